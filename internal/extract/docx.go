package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// docxText reads the main document part of a .docx archive and joins the
// non-blank paragraphs with newlines.
func docxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("extract: open docx %s: %w", path, err)
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if entry.Name != docxDocumentPath {
			continue
		}
		doc, err := entry.Open()
		if err != nil {
			return "", fmt.Errorf("extract: read docx %s: %w", path, err)
		}
		defer doc.Close()
		text, err := parseDocumentXML(doc)
		if err != nil {
			return "", fmt.Errorf("extract: parse docx %s: %w", path, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("extract: docx %s has no %s", path, docxDocumentPath)
}

// parseDocumentXML walks WordprocessingML, collecting text runs (w:t) into
// paragraphs delimited by w:p elements.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch node := token.(type) {
		case xml.StartElement:
			if node.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch node.Name.Local {
			case "t":
				inText = false
			case "p":
				if strings.TrimSpace(current.String()) != "" {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(node)
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		paragraphs = append(paragraphs, current.String())
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}
