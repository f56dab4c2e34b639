package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeEmbedding()
	c.normalizeGemini()
	c.normalizeTranscriber()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.TranscriptDir, err = expandPath(c.Paths.TranscriptDir); err != nil {
		return fmt.Errorf("paths.transcript_dir: %w", err)
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStore() error {
	var err error
	if strings.TrimSpace(c.Store.PersistDir) == "" {
		c.Store.PersistDir = defaultPersistDir
	}
	if c.Store.PersistDir, err = expandPath(c.Store.PersistDir); err != nil {
		return fmt.Errorf("store.persist_dir: %w", err)
	}
	c.Store.Collection = strings.TrimSpace(c.Store.Collection)
	return nil
}

// normalizeEmbedding fills provider defaults and falls back to the
// OPENAI_API_KEY environment variable for the hosted provider.
func (c *Config) normalizeEmbedding() {
	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = defaultEmbedProvider
	}
	if c.Embedding.Provider == "openai" {
		if strings.TrimSpace(c.Embedding.APIKey) == "" {
			c.Embedding.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		if strings.TrimSpace(c.Embedding.BaseURL) == "" {
			c.Embedding.BaseURL = defaultOpenAIBaseURL
		}
		if strings.TrimSpace(c.Embedding.Model) == "" {
			c.Embedding.Model = defaultOpenAIModel
		}
		if c.Embedding.Dimension <= 0 {
			c.Embedding.Dimension = defaultOpenAIDim
		}
	}
}

// normalizeGemini falls back to the GEMINI_API_KEY environment variable when
// no key is configured.
func (c *Config) normalizeGemini() {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		c.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if strings.TrimSpace(c.Gemini.BaseURL) == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeout
	}
}

func (c *Config) normalizeTranscriber() {
	if strings.TrimSpace(c.Transcriber.Model) == "" {
		c.Transcriber.Model = defaultWhisperModel
	}
	if c.Transcriber.SegmentSeconds <= 0 {
		c.Transcriber.SegmentSeconds = defaultSegmentSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
