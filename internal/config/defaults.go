package config

import (
	"lectern/internal/chunker"
	"lectern/internal/embedding"
	"lectern/internal/services/transcriber"
	"lectern/internal/vectorstore"
)

const (
	defaultDataDir        = "~/.local/share/lectern"
	defaultAudioDir       = "~/.local/share/lectern/audio"
	defaultTranscriptDir  = "~/.local/share/lectern/transcripts"
	defaultDownloadDir    = "~/.local/share/lectern/downloads"
	defaultLogDir         = "~/.local/share/lectern/logs"
	defaultAPIBind        = "127.0.0.1:7590"
	defaultPersistDir     = "~/.local/share/lectern/store"
	defaultEmbedProvider  = "hash"
	defaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGeminiTimeout  = 60
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultOpenAIModel    = "text-embedding-3-small"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIDim      = 1536
	defaultWhisperModel   = transcriber.DefaultModel
	defaultSegmentSeconds = transcriber.DefaultSegmentSeconds
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			AudioDir:      defaultAudioDir,
			TranscriptDir: defaultTranscriptDir,
			DownloadDir:   defaultDownloadDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		Store: Store{
			PersistDir:   defaultPersistDir,
			Collection:   vectorstore.DefaultCollection,
			ChunkSize:    chunker.DefaultSize,
			ChunkOverlap: chunker.DefaultOverlap,
		},
		Embedding: Embedding{
			Provider:  defaultEmbedProvider,
			Dimension: embedding.DefaultHashDimension,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Transcriber: Transcriber{
			Model:          defaultWhisperModel,
			SegmentSeconds: defaultSegmentSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
