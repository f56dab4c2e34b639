// Package extract pulls plain text out of uploaded course documents.
package extract

import (
	"path/filepath"
	"strings"
)

// Supported reports whether Text can handle the file's extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// Text extracts the textual content of a PDF or DOCX file. The boolean
// reports whether the format is supported at all; legacy .doc files and
// unknown extensions return ("", false, nil) so callers can distinguish
// unsupported input from a failed extraction.
func Text(path string) (string, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := pdfText(path)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	case ".docx":
		text, err := docxText(path)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	default:
		return "", false, nil
	}
}
