package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lectern/internal/embedding"
)

func TestNewOpenAIEmbedderRequiresAPIKey(t *testing.T) {
	if _, err := embedding.NewOpenAIEmbedder("  ", 8); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

func TestNewOpenAIEmbedderRequiresPositiveDimension(t *testing.T) {
	if _, err := embedding.NewOpenAIEmbedder("key", 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestOpenAIEmbedderEmbed(t *testing.T) {
	var gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3, 0.4}}},
		})
	}))
	defer server.Close()

	e, err := embedding.NewOpenAIEmbedder("secret", 4,
		embedding.WithOpenAIBaseURL(server.URL),
		embedding.WithOpenAIModel("test-model"),
	)
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}

	vec, err := e.Embed(context.Background(), "what is motion")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(vec))
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotModel != "test-model" {
		t.Fatalf("unexpected model: %q", gotModel)
	}
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2}}},
		})
	}))
	defer server.Close()

	e, err := embedding.NewOpenAIEmbedder("secret", 4, embedding.WithOpenAIBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestOpenAIEmbedderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	e, err := embedding.NewOpenAIEmbedder("secret", 4, embedding.WithOpenAIBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}
	_, err = e.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected http 429 error, got %v", err)
	}
}
