package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordDocumentPart = "word/document.xml"

var ErrNoDocumentPart = errors.New("word/document.xml not found")

// Word returns the text of each paragraph in the document body, joined with newlines.
// Paragraphs nested in tables and text boxes are skipped.
func Word(path string) (text string, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open Word document: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != wordDocumentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", wordDocumentPart, err)
		}
		defer rc.Close()
		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", wordDocumentPart, err)
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", ErrNoDocumentPart
}

// skippedRunContent holds drawings and legacy shapes, which carry text boxes, and the markup
// compatibility wrapper that repeats the same content in its Choice and Fallback branches.
var skippedRunContent = map[string]bool{
	"drawing":          true,
	"pict":             true,
	"AlternateContent": true,
}

func bodyParagraphs(r io.Reader) (paragraphs []string, err error) {
	d := xml.NewDecoder(r)
	// Element local names from the root to the current element.
	var path []string
	var current *strings.Builder
	inText := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			name := tok.Name.Local
			if current != nil && skippedRunContent[name] {
				if err = d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			if name == "p" && len(path) == 2 && path[1] == "body" {
				current = new(strings.Builder)
			}
			if current != nil && len(path) > 0 && path[len(path)-1] == "r" {
				switch name {
				case "t":
					inText = true
				case "tab":
					current.WriteString("\t")
				case "br", "cr":
					current.WriteString("\n")
				}
			}
			path = append(path, name)
		case xml.EndElement:
			path = path[:len(path)-1]
			if tok.Name.Local == "t" {
				inText = false
			}
			if tok.Name.Local == "p" && len(path) == 2 && path[1] == "body" && current != nil {
				paragraphs = append(paragraphs, current.String())
				current = nil
			}
		case xml.CharData:
			if current != nil && inText {
				current.Write(tok)
			}
		}
	}
}
