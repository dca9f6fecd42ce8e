package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/tmc/langchaingo/documentloaders"
)

var ErrNotUTF8 = errors.New("text is not valid UTF-8")

// Text returns the contents of a UTF-8 text file unchanged.
func Text(ctx context.Context, path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open text file: %w", err)
	}
	defer f.Close()
	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load text file: %w", err)
	}
	if len(docs) == 0 {
		return "", nil
	}
	text = docs[0].PageContent
	if !utf8.ValidString(text) {
		return "", ErrNotUTF8
	}
	return text, nil
}
