package extract

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of document attachments so the pipeline can
// route them through the text classifier. PDFs go through the pdf reader;
// plain-text formats pass through directly.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document: %s", filename)
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt", ".md", ".csv":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("document is not valid text: %s", filename)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filename)
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return b.String(), nil
}
