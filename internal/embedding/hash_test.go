package embedding_test

import (
	"context"
	"math"
	"testing"

	"lectern/internal/embedding"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := embedding.NewHashEmbedder(128)
	ctx := context.Background()

	first, err := e.Embed(ctx, "velocity describes the rate of change of position")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := e.Embed(ctx, "velocity describes the rate of change of position")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(first) != 128 || len(second) != 128 {
		t.Fatalf("unexpected dimensions: %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at index %d", i)
		}
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := embedding.NewHashEmbedder(64)
	vec, err := e.Embed(context.Background(), "work is force applied over a distance")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Fatalf("expected unit vector, squared norm = %f", sum)
	}
}

func TestHashEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := embedding.NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector, index %d = %f", i, v)
		}
	}
}

func TestHashEmbedderSimilarTextCloserThanUnrelated(t *testing.T) {
	e := embedding.NewHashEmbedder(embedding.DefaultHashDimension)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "velocity is the rate of change of position over time")
	near, _ := e.Embed(ctx, "what is velocity and how does position change over time")
	far, _ := e.Embed(ctx, "the mitochondria is the powerhouse of the cell")

	if dot(base, near) <= dot(base, far) {
		t.Fatalf("related text scored %f, unrelated %f", dot(base, near), dot(base, far))
	}
}

func TestHashEmbedderDefaultDimension(t *testing.T) {
	e := embedding.NewHashEmbedder(0)
	if e.Dimension() != embedding.DefaultHashDimension {
		t.Fatalf("expected default dimension, got %d", e.Dimension())
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
