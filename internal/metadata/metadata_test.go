package metadata_test

import (
	"encoding/json"
	"testing"

	"lectern/internal/metadata"
)

func TestSanitizeDropsNilAndCoercesRichValues(t *testing.T) {
	out := metadata.Sanitize(map[string]any{
		"a": nil,
		"b": 3,
		"c": []int{1, 2},
	})

	if _, ok := out["a"]; ok {
		t.Fatal("nil value should be dropped")
	}
	if got := out["b"]; got.Kind() != metadata.KindInt || got.IntValue() != 3 {
		t.Fatalf("expected int 3, got %#v", got)
	}
	if got := out["c"]; got.Kind() != metadata.KindString || got.StringValue() != "[1 2]" {
		t.Fatalf("expected stringified slice, got %#v", got)
	}
}

func TestSanitizePreservesPrimitiveKinds(t *testing.T) {
	out := metadata.Sanitize(map[string]any{
		"s": "physics",
		"i": int64(7),
		"f": 2.5,
		"t": true,
	})
	if out["s"].Kind() != metadata.KindString {
		t.Fatalf("string kind lost: %#v", out["s"])
	}
	if out["i"].Kind() != metadata.KindInt || out["i"].IntValue() != 7 {
		t.Fatalf("int kind lost: %#v", out["i"])
	}
	if out["f"].Kind() != metadata.KindFloat || out["f"].FloatValue() != 2.5 {
		t.Fatalf("float kind lost: %#v", out["f"])
	}
	if out["t"].Kind() != metadata.KindBool || !out["t"].BoolValue() {
		t.Fatalf("bool kind lost: %#v", out["t"])
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := metadata.Record{
		"filename":    metadata.String("lesson.pdf"),
		"chunk_index": metadata.Int(2),
		"score":       metadata.Float(0.5),
		"archived":    metadata.Bool(false),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored metadata.Record
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored["filename"].Kind() != metadata.KindString || restored["filename"].StringValue() != "lesson.pdf" {
		t.Fatalf("filename mismatch: %#v", restored["filename"])
	}
	if restored["chunk_index"].Kind() != metadata.KindInt || restored["chunk_index"].IntValue() != 2 {
		t.Fatalf("chunk_index mismatch: %#v", restored["chunk_index"])
	}
	if restored["score"].Kind() != metadata.KindFloat || restored["score"].FloatValue() != 0.5 {
		t.Fatalf("score mismatch: %#v", restored["score"])
	}
	if restored["archived"].Kind() != metadata.KindBool || restored["archived"].BoolValue() {
		t.Fatalf("archived mismatch: %#v", restored["archived"])
	}
}

func TestValueText(t *testing.T) {
	cases := []struct {
		value metadata.Value
		want  string
	}{
		{metadata.String("motion"), "motion"},
		{metadata.Int(12), "12"},
		{metadata.Float(1.25), "1.25"},
		{metadata.Bool(true), "true"},
	}
	for _, tc := range cases {
		if got := tc.value.Text(); got != tc.want {
			t.Fatalf("Text() = %q, want %q", got, tc.want)
		}
	}
}

func TestRecordLookupAbsentField(t *testing.T) {
	rec := metadata.Record{"subject": metadata.String("Math")}
	if got := rec.Lookup("chapter"); got != "" {
		t.Fatalf("expected empty lookup, got %q", got)
	}
	if got := rec.Lookup("subject"); got != "Math" {
		t.Fatalf("expected Math, got %q", got)
	}
}
