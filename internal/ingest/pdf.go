package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one PDF page.
type Page struct {
	Number int
	Text   string
}

// ReadPDF extracts plain text from every page of the PDF at path. Pages
// that fail extraction are skipped; the file-level error is returned only
// when the document cannot be opened at all.
func ReadPDF(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var pages []Page
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
