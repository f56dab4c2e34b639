package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "text-embedding-3-small"
	defaultOpenAITimeout = 30 * time.Second
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// OpenAIOption customizes the embedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithOpenAIBaseURL overrides the API base (useful for tests and proxies).
func WithOpenAIBaseURL(base string) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		base = strings.TrimSpace(base)
		if base != "" {
			e.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithOpenAIModel overrides the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		model = strings.TrimSpace(model)
		if model != "" {
			e.model = model
		}
	}
}

// WithOpenAIHTTPClient overrides the default HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// NewOpenAIEmbedder constructs the HTTP embedder. dimension must match the
// vector size the configured model produces.
func NewOpenAIEmbedder(apiKey string, dimension int, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("embedding: api key required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding: dimension must be positive, got %d", dimension)
	}
	e := &OpenAIEmbedder{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultOpenAIBaseURL,
		model:      defaultOpenAIModel,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: defaultOpenAITimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: defaultOpenAITimeout}
	}
	return e, nil
}

// Dimension reports the configured vector length.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

type embeddingsRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed requests a vector for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("embedding: text required")
	}
	endpoint, err := url.JoinPath(e.baseURL, "/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding: build url: %w", err)
	}
	encoded, err := json.Marshal(embeddingsRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("embedding: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("embedding: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("embedding: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var decoded embeddingsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("embedding: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	if len(decoded.Data) == 0 {
		return nil, errors.New("embedding: empty response data")
	}
	vec := decoded.Data[0].Embedding
	if len(vec) != e.dimension {
		return nil, fmt.Errorf("embedding: got %d dimensions, expected %d", len(vec), e.dimension)
	}
	return vec, nil
}
