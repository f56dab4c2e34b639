package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lectern/internal/answer"
	"lectern/internal/config"
	"lectern/internal/download"
	"lectern/internal/embedding"
	"lectern/internal/logging"
	"lectern/internal/pipeline"
	"lectern/internal/retriever"
	"lectern/internal/services/gemini"
	"lectern/internal/services/transcriber"
	"lectern/internal/vectorstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		outputs := []string{"stderr"}
		if cfg.Paths.LogDir != "" {
			outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "lectern.log"))
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Dimension,
			embedding.WithOpenAIBaseURL(cfg.Embedding.BaseURL),
			embedding.WithOpenAIModel(cfg.Embedding.Model),
		)
	default:
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension), nil
	}
}

// withStore opens the vector store, runs fn, and closes it.
func (c *commandContext) withStore(ctx context.Context, fn func(*vectorstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := vectorstore.Open(ctx, cfg.Store.PersistDir, cfg.Store.Collection, embedder)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// buildPipeline assembles the full ingestion pipeline around an open store.
func (c *commandContext) buildPipeline(store *vectorstore.Store) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	svc := transcriber.NewService(transcriber.Config{
		Model:          cfg.Transcriber.Model,
		Language:       cfg.Transcriber.Language,
		SegmentSeconds: cfg.Transcriber.SegmentSeconds,
	}, cfg.Transcriber.FFmpegBinary, cfg.Transcriber.WhisperBinary)

	fetcher := download.New(download.WithYTDLPBinary(cfg.Download.YTDLPBinary))

	return pipeline.New(store,
		pipeline.Dirs{
			Audio:      cfg.Paths.AudioDir,
			Transcript: cfg.Paths.TranscriptDir,
			Download:   cfg.Paths.DownloadDir,
		},
		pipeline.WithTranscriber(svc),
		pipeline.WithFetcher(fetcher),
		pipeline.WithChunking(cfg.Store.ChunkSize, cfg.Store.ChunkOverlap),
		pipeline.WithLogger(c.ensureLogger()),
	)
}

// buildAssembler wires retrieval and Gemini generation around an open store.
func (c *commandContext) buildAssembler(store *vectorstore.Store) (*answer.Assembler, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	ret, err := retriever.New(store)
	if err != nil {
		return nil, err
	}
	client := gemini.NewClient(cfg.Gemini.APIKey,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second),
	)
	return answer.New(ret, client)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
