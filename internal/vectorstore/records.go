package vectorstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"lectern/internal/chunker"
	"lectern/internal/metadata"
)

// Metadata fields written by AddChunked alongside the caller's record.
const (
	FieldChunkIndex  = "chunk_index"
	FieldTotalChunks = "total_chunks"
	FieldSourceID    = "source_id"
)

// ChunkID derives the deterministic record id for a chunk of a source.
func ChunkID(sourceID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", sourceID, index)
}

// AddSingle embeds and stores one record. A random id is generated when none
// is supplied. Blank text fails with ErrEmptyInput.
func (s *Store) AddSingle(ctx context.Context, text string, meta metadata.Record, id string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	if id == "" {
		id = uuid.NewString()
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("vectorstore: embed text: %w", err)
	}
	err = retryOnBusy(ctx, func() error {
		return s.insertRecords(ctx, []pendingRecord{{id: id, text: text, meta: meta, embedding: vec}})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddChunked splits text with the chunker and stores every chunk under
// ChunkID(sourceID, index), merging the base metadata with chunk_index,
// total_chunks, and source_id. All chunks commit in one transaction; a blank
// input or an empty chunking result fails with ErrEmptyInput before anything
// is written. Returns the source id, generated when the caller passed none.
func (s *Store) AddChunked(ctx context.Context, text string, meta metadata.Record, sourceID string, size, overlap int) (string, error) {
	chunks, err := chunker.Split(text, size, overlap)
	if err != nil {
		return "", fmt.Errorf("vectorstore: chunk text: %w", err)
	}
	if len(chunks) == 0 {
		return "", ErrEmptyInput
	}
	if sourceID == "" {
		sourceID = uuid.NewString()
	}

	pending := make([]pendingRecord, 0, len(chunks))
	total := int64(len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("vectorstore: embed chunk %d: %w", i, err)
		}
		chunkMeta := meta.Clone()
		if chunkMeta == nil {
			chunkMeta = metadata.Record{}
		}
		chunkMeta[FieldChunkIndex] = metadata.Int(int64(i))
		chunkMeta[FieldTotalChunks] = metadata.Int(total)
		chunkMeta[FieldSourceID] = metadata.String(sourceID)
		pending = append(pending, pendingRecord{
			id:        ChunkID(sourceID, i),
			text:      chunk,
			meta:      chunkMeta,
			embedding: vec,
		})
	}

	err = retryOnBusy(ctx, func() error {
		return s.insertRecords(ctx, pending)
	})
	if err != nil {
		return "", err
	}
	return sourceID, nil
}

type pendingRecord struct {
	id        string
	text      string
	meta      metadata.Record
	embedding []float32
}

func (s *Store) insertRecords(ctx context.Context, records []pendingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, rec := range records {
		meta := rec.meta
		if meta == nil {
			meta = metadata.Record{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("vectorstore: marshal metadata for %s: %w", rec.id, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO records (collection_id, id, document, metadata_json, embedding, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			s.collectionID, rec.id, rec.text, string(metaJSON), encodeVector(rec.embedding), now,
		)
		if err != nil {
			return fmt.Errorf("vectorstore: insert record %s: %w", rec.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vectorstore: commit records: %w", err)
	}
	return nil
}

// encodeVector packs float32 values as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
