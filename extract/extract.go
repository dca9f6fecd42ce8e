// Package extract gets plain text out of uploaded documents.
//
// Extraction is best effort. Failures are logged and replaced with a placeholder, so callers
// always get a string.
package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	PDFPlaceholder  = "Could not extract text from PDF"
	WordPlaceholder = "Could not extract text from Word document"
	TextPlaceholder = "Could not extract text from text file"
)

func New(log *slog.Logger) Extractor {
	return Extractor{
		log: log,
	}
}

type Extractor struct {
	log *slog.Logger
}

// Supported returns true if the file name has an extension that text can be extracted from.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".doc", ".docx", ".txt":
		return true
	}
	return false
}

// File returns the text of the file at path, chosen by its extension.
// Unsupported extensions return an empty string.
func (e Extractor) File(ctx context.Context, path string) string {
	var text string
	var err error
	placeholder := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = e.pdf(ctx, path)
		placeholder = PDFPlaceholder
	case ".doc", ".docx":
		text, err = Word(path)
		placeholder = WordPlaceholder
	case ".txt":
		text, err = Text(ctx, path)
		placeholder = TextPlaceholder
	default:
		return ""
	}
	if err != nil {
		e.log.Warn("text extraction failed", slog.String("path", path), slog.Any("error", err))
		return placeholder
	}
	return text
}

// pdf tries the langchaingo loader first, then the plain text reader.
func (e Extractor) pdf(ctx context.Context, path string) (text string, err error) {
	text, err = PDF(ctx, path)
	if err == nil {
		return text, nil
	}
	e.log.Debug("pdf loader failed, trying plain text reader", slog.String("path", path), slog.Any("error", err))
	return PDFPlainText(path)
}
