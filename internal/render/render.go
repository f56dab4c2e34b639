// Package render writes transcript text to printable PDF documents.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pageMargin = 25.4 // one inch, in millimeters
	titleSize  = 18.0
	bodySize   = 11.0
	lineHeight = 6.0
)

// TranscriptPDFPath returns the output path for a transcript PDF, creating
// outputDir if needed.
func TranscriptPDFPath(baseName, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("render: ensure output dir: %w", err)
	}
	return filepath.Join(outputDir, baseName+"_transcript.pdf"), nil
}

// TitleFromBaseName turns a file base name into a presentable document title.
func TitleFromBaseName(baseName string) string {
	title := strings.NewReplacer("_", " ", "-", " ").Replace(baseName)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "Transcript"
	}
	return cases.Title(language.Und).String(title)
}

// TranscriptPDF writes text to an A4 PDF at outputPath with a title heading.
// Blank lines in the text delimit paragraphs.
func TranscriptPDF(text, outputPath, title string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("render: transcript text is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("render: ensure output dir: %w", err)
	}
	if title == "" {
		title = "Transcript"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	translate := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.MultiCell(0, lineHeight*1.5, translate(title), "", "C", false)
	pdf.Ln(lineHeight)

	pdf.SetFont("Helvetica", "", bodySize)
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		pdf.MultiCell(0, lineHeight, translate(block), "", "L", false)
		pdf.Ln(lineHeight / 2)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("render: write %s: %w", outputPath, err)
	}
	return nil
}
