package extract

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
      <w:r><w:t>Hello, </w:t></w:r><w:r><w:t>world.</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>paragraph.</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>In a table.</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p/>
    <w:p><w:r><w:t>Last.</w:t></w:r></w:p>
  </w:body>
</w:document>`

const textBoxXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"
  xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
  xmlns:v="urn:schemas-microsoft-com:vml">
  <w:body>
    <w:p>
      <w:r><w:t>Body.</w:t></w:r>
      <w:r>
        <mc:AlternateContent>
          <mc:Choice Requires="wps">
            <w:drawing><wp:anchor><a:graphic><a:graphicData><wps:wsp><wps:txbx>
              <w:txbxContent><w:p><w:r><w:t>Box</w:t></w:r></w:p></w:txbxContent>
            </wps:txbx></wps:wsp></a:graphicData></a:graphic></wp:anchor></w:drawing>
          </mc:Choice>
          <mc:Fallback>
            <w:pict><v:shape><v:textbox>
              <w:txbxContent><w:p><w:r><w:t>Box</w:t></w:r></w:p></w:txbxContent>
            </v:textbox></v:shape></w:pict>
          </mc:Fallback>
        </mc:AlternateContent>
      </w:r>
    </w:p>
    <w:p><w:r><w:drawing><wp:inline><w:txbxContent><w:p><w:r><w:t>Inline</w:t></w:r></w:p></w:txbxContent></wp:inline></w:drawing><w:t>After.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, name, xml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create(wordDocumentPart)
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err = w.Write([]byte(xml)); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return path
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func newTestExtractor() Extractor {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	e := newTestExtractor()

	tests := []struct {
		name     string
		path     func(t *testing.T) string
		expected string
	}{
		{
			name:     "text files are returned unchanged",
			path:     func(t *testing.T) string { return writeFile(t, "notes.txt", []byte("line 1\r\nline 2\n\n  indented")) },
			expected: "line 1\r\nline 2\n\n  indented",
		},
		{
			name:     "the extension is case insensitive",
			path:     func(t *testing.T) string { return writeFile(t, "NOTES.TXT", []byte("upper")) },
			expected: "upper",
		},
		{
			name:     "empty text files are empty",
			path:     func(t *testing.T) string { return writeFile(t, "empty.txt", nil) },
			expected: "",
		},
		{
			name:     "text files that aren't UTF-8 return a placeholder",
			path:     func(t *testing.T) string { return writeFile(t, "latin1.txt", []byte{0x63, 0x61, 0x66, 0xe9}) },
			expected: TextPlaceholder,
		},
		{
			name:     "docx paragraphs are joined with newlines",
			path:     func(t *testing.T) string { return writeDocx(t, "report.docx", documentXML) },
			expected: "Hello, world.\nSecond\tparagraph.\n\nLast.",
		},
		{
			name:     "docx text boxes are skipped",
			path:     func(t *testing.T) string { return writeDocx(t, "boxes.docx", textBoxXML) },
			expected: "Body.\nAfter.",
		},
		{
			name:     "invalid Word documents return a placeholder",
			path:     func(t *testing.T) string { return writeFile(t, "legacy.doc", []byte("not a zip file")) },
			expected: WordPlaceholder,
		},
		{
			name: "zip files without a document part return a placeholder",
			path: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.docx")
				f, err := os.Create(path)
				if err != nil {
					t.Fatalf("failed to create file: %v", err)
				}
				defer f.Close()
				if err = zip.NewWriter(f).Close(); err != nil {
					t.Fatalf("failed to close zip: %v", err)
				}
				return path
			},
			expected: WordPlaceholder,
		},
		{
			name:     "invalid PDFs return a placeholder",
			path:     func(t *testing.T) string { return writeFile(t, "broken.pdf", []byte("%PDF-1.4 this is not really a PDF")) },
			expected: PDFPlaceholder,
		},
		{
			name:     "missing files return a placeholder",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.txt") },
			expected: TextPlaceholder,
		},
		{
			name:     "unsupported extensions return an empty string",
			path:     func(t *testing.T) string { return writeFile(t, "image.png", []byte{0x89, 0x50, 0x4e, 0x47}) },
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := e.File(ctx, tt.path(t))
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"report.pdf":  true,
		"report.PDF":  true,
		"letter.doc":  true,
		"letter.docx": true,
		"notes.txt":   true,
		"image.png":   false,
		"README":      false,
	}
	for name, expected := range tests {
		if actual := Supported(name); actual != expected {
			t.Errorf("%s: expected %v, got %v", name, expected, actual)
		}
	}
}
