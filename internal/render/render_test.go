package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscriptPDFWritesFile(t *testing.T) {
	dir := t.TempDir()
	out, err := TranscriptPDFPath("physics_lesson_1", dir)
	if err != nil {
		t.Fatalf("TranscriptPDFPath: %v", err)
	}
	if filepath.Base(out) != "physics_lesson_1_transcript.pdf" {
		t.Errorf("path = %q", out)
	}

	text := "First paragraph of the lecture.\n\nSecond paragraph with more detail."
	if err := TranscriptPDF(text, out, "Physics Lesson 1"); err != nil {
		t.Fatalf("TranscriptPDF: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output is not a PDF (%d bytes)", len(data))
	}
}

func TestTranscriptPDFRejectsEmptyText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty_transcript.pdf")
	if err := TranscriptPDF("   \n  ", out, "Empty"); err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no file should be written for empty transcript")
	}
}

func TestTitleFromBaseName(t *testing.T) {
	cases := map[string]string{
		"physics_lesson_1":  "Physics Lesson 1",
		"intro-to-biology":  "Intro To Biology",
		"already Titled":    "Already Titled",
		"":                  "Transcript",
		"___":               "Transcript",
		"mixed_case-tokens": "Mixed Case Tokens",
	}
	for input, want := range cases {
		if got := TitleFromBaseName(input); got != want {
			t.Errorf("TitleFromBaseName(%q) = %q, want %q", input, got, want)
		}
	}
}
