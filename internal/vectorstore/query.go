package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"lectern/internal/metadata"
)

// DefaultNResults is the query result count used when the caller passes a
// non-positive value.
const DefaultNResults = 5

// Where is an exact-match metadata filter. A record matches when every filter
// field is present with the same textual value.
type Where map[string]string

// QueryResult holds ranked similarity matches, parallel slices ordered by
// ascending distance.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []metadata.Record
	Distances []float64
}

// Listing holds every stored record in storage order.
type Listing struct {
	IDs       []string
	Documents []string
	Metadatas []metadata.Record
	Count     int
}

type storedRecord struct {
	id        string
	document  string
	meta      metadata.Record
	embedding []float32
}

// Query embeds the query text and returns up to n records ranked by ascending
// cosine distance. Fewer stored records than n is not an error: the result is
// capped to the collection size, and an empty collection yields empty slices.
func (s *Store) Query(ctx context.Context, queryText string, n int, where Where) (QueryResult, error) {
	var result QueryResult
	if n <= 0 {
		n = DefaultNResults
	}
	vec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return result, fmt.Errorf("vectorstore: embed query: %w", err)
	}

	records, err := s.loadRecords(ctx, true)
	if err != nil {
		return result, err
	}

	type scored struct {
		rec      storedRecord
		distance float64
	}
	candidates := make([]scored, 0, len(records))
	for _, rec := range records {
		if !matchesWhere(rec.meta, where) {
			continue
		}
		candidates = append(candidates, scored{rec: rec, distance: cosineDistance(vec, rec.embedding)})
	}

	// Ascending distance, ties broken by id for a stable order within a call.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance == candidates[j].distance {
			return candidates[i].rec.id < candidates[j].rec.id
		}
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	for _, c := range candidates {
		result.IDs = append(result.IDs, c.rec.id)
		result.Documents = append(result.Documents, c.rec.document)
		result.Metadatas = append(result.Metadatas, c.rec.meta)
		result.Distances = append(result.Distances, c.distance)
	}
	return result, nil
}

// ListAll returns every record's id, text, and metadata in storage order,
// plus the total count. An empty collection yields empty slices.
func (s *Store) ListAll(ctx context.Context) (Listing, error) {
	var listing Listing
	records, err := s.loadRecords(ctx, false)
	if err != nil {
		return listing, err
	}
	for _, rec := range records {
		listing.IDs = append(listing.IDs, rec.id)
		listing.Documents = append(listing.Documents, rec.document)
		listing.Metadatas = append(listing.Metadatas, rec.meta)
	}
	listing.Count = len(records)
	return listing, nil
}

// Count returns the number of records stored in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM records WHERE collection_id = ?", s.collectionID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("vectorstore: count records: %w", err)
	}
	return count, nil
}

func (s *Store) loadRecords(ctx context.Context, withEmbeddings bool) ([]storedRecord, error) {
	columns := "id, document, metadata_json"
	if withEmbeddings {
		columns += ", embedding"
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM records WHERE collection_id = ? ORDER BY rowid", s.collectionID)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: load records: %w", err)
	}
	defer rows.Close()

	var records []storedRecord
	for rows.Next() {
		var rec storedRecord
		var metaJSON string
		var blob []byte
		if withEmbeddings {
			err = rows.Scan(&rec.id, &rec.document, &metaJSON, &blob)
		} else {
			err = rows.Scan(&rec.id, &rec.document, &metaJSON)
		}
		if err != nil {
			return nil, fmt.Errorf("vectorstore: scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &rec.meta); err != nil {
			return nil, fmt.Errorf("vectorstore: decode metadata for %s: %w", rec.id, err)
		}
		if withEmbeddings {
			rec.embedding = decodeVector(blob)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: iterate records: %w", err)
	}
	return records, nil
}

func matchesWhere(meta metadata.Record, where Where) bool {
	for key, want := range where {
		val, ok := meta[key]
		if !ok || val.Text() != want {
			return false
		}
	}
	return true
}

// cosineDistance is 1 - cosine similarity; smaller means more similar.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
