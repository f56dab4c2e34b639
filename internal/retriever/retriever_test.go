package retriever_test

import (
	"context"
	"strings"
	"testing"

	"lectern/internal/embedding"
	"lectern/internal/metadata"
	"lectern/internal/retriever"
	"lectern/internal/vectorstore"
)

func newStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.Open(context.Background(), t.TempDir(), "", embedding.NewHashEmbedder(64))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRetrieveReturnsRankedPassages(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	text := strings.TrimSpace(strings.Repeat("Velocity describes the rate of change of position. ", 15))
	if _, err := store.AddChunked(ctx, text, metadata.Record{"video_id": metadata.String("v1")}, "src", 200, 40); err != nil {
		t.Fatalf("AddChunked failed: %v", err)
	}

	svc, err := retriever.New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	passages, err := svc.Retrieve(ctx, "what is velocity", 3, "")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(passages) == 0 {
		t.Fatal("expected passages")
	}
	for i := 1; i < len(passages); i++ {
		if passages[i].Distance < passages[i-1].Distance {
			t.Fatalf("passages not in ascending distance order")
		}
	}
	if passages[0].Metadata.Lookup("video_id") != "v1" {
		t.Fatalf("metadata not carried through: %+v", passages[0].Metadata)
	}
}

func TestRetrieveScopedNeverLeaks(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.AddChunked(ctx, "Velocity in the first video lesson.", metadata.Record{"video_id": metadata.String("v1")}, "a", 500, 80); err != nil {
		t.Fatalf("AddChunked failed: %v", err)
	}
	if _, err := store.AddChunked(ctx, "Velocity in the second video lesson.", metadata.Record{"video_id": metadata.String("v2")}, "b", 500, 80); err != nil {
		t.Fatalf("AddChunked failed: %v", err)
	}

	svc, err := retriever.New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	passages, err := svc.Retrieve(ctx, "velocity", 10, "v2")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(passages) == 0 {
		t.Fatal("expected scoped passages")
	}
	for _, p := range passages {
		if p.Metadata.Lookup("video_id") != "v2" {
			t.Fatalf("passage leaked from another scope: %+v", p.Metadata)
		}
	}
}

func TestRetrieveNoResultsIsNotAnError(t *testing.T) {
	store := newStore(t)
	svc, err := retriever.New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	passages, err := svc.Retrieve(context.Background(), "anything", 5, "missing-scope")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(passages) != 0 {
		t.Fatalf("expected no passages, got %d", len(passages))
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := retriever.New(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}
