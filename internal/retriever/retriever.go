// Package retriever fetches the passages most relevant to a question from the
// vector store, optionally scoped to a single video.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lectern/internal/metadata"
	"lectern/internal/vectorstore"
)

// ScopeField is the metadata field used to restrict retrieval to one upload.
const ScopeField = "video_id"

// Passage is one retrieved chunk with its metadata and similarity distance.
type Passage struct {
	ID       string
	Text     string
	Metadata metadata.Record
	Distance float64
}

// Service wraps the vector store's query operation.
type Service struct {
	store *vectorstore.Store
}

// New constructs a retriever over the given store.
func New(store *vectorstore.Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("retriever: store is required")
	}
	return &Service{store: store}, nil
}

// Retrieve returns up to n passages ranked by ascending distance. A non-empty
// scopeID restricts the search to records whose video_id matches. Zero
// results is a normal outcome, not an error.
func (s *Service) Retrieve(ctx context.Context, question string, n int, scopeID string) ([]Passage, error) {
	var where vectorstore.Where
	if strings.TrimSpace(scopeID) != "" {
		where = vectorstore.Where{ScopeField: scopeID}
	}
	result, err := s.store.Query(ctx, question, n, where)
	if err != nil {
		return nil, fmt.Errorf("retriever: query: %w", err)
	}
	passages := make([]Passage, 0, len(result.IDs))
	for i := range result.IDs {
		passages = append(passages, Passage{
			ID:       result.IDs[i],
			Text:     result.Documents[i],
			Metadata: result.Metadatas[i],
			Distance: result.Distances[i],
		})
	}
	return passages, nil
}
