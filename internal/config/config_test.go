package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/chunker"
	"lectern/internal/vectorstore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists should be false for missing file")
	}
	if cfg.Store.Collection != vectorstore.DefaultCollection {
		t.Errorf("collection = %q", cfg.Store.Collection)
	}
	if cfg.Store.ChunkSize != chunker.DefaultSize || cfg.Store.ChunkOverlap != chunker.DefaultOverlap {
		t.Errorf("chunking = %d/%d", cfg.Store.ChunkSize, cfg.Store.ChunkOverlap)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("provider = %q", cfg.Embedding.Provider)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("gemini model = %q", cfg.Gemini.Model)
	}
	if !filepath.IsAbs(cfg.Store.PersistDir) {
		t.Errorf("persist dir not expanded: %q", cfg.Store.PersistDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, `
[store]
collection = "course_material"
chunk_size = 900
chunk_overlap = 120

[gemini]
api_key = "g-key"
model = "gemini-2.5-pro"

[logging]
format = "json"
level = "debug"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Store.Collection != "course_material" || cfg.Store.ChunkSize != 900 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Gemini.APIKey != "g-key" || cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("gemini = %+v", cfg.Gemini)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadGeminiKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("gemini key = %q", cfg.Gemini.APIKey)
	}
}

func TestLoadRejectsBadChunking(t *testing.T) {
	path := writeConfig(t, `
[store]
chunk_size = 100
chunk_overlap = 100
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for overlap >= size")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "word2vec"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadOpenAIProviderNeedsKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, `
[embedding]
provider = "openai"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for missing openai key")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load with env key: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimension != 1536 {
		t.Errorf("openai defaults = %+v", cfg.Embedding)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[store]") {
		t.Error("sample missing store section")
	}
	if err := WriteSample(path); err == nil {
		t.Error("expected error overwriting existing config")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.TranscriptDir = filepath.Join(base, "transcripts")
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Store.PersistDir = filepath.Join(base, "store")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Store.PersistDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created: %v", dir, err)
		}
	}
}
