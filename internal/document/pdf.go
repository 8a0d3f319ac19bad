package document

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF extracts text from a PDF file, page by page.
//
// Page numbers are 1-based and sequential. Pages whose extracted text is
// empty after trimming are skipped, so the returned units may have gaps in
// their page numbering that reflect blank pages in the source.
func ExtractPDF(path string) ([]Unit, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrExtraction, path, err)
	}
	defer f.Close()

	var units []Unit
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: reading page %d of %s: %v", ErrExtraction, pageNum, path, err)
		}

		if strings.TrimSpace(text) != "" {
			units = append(units, Unit{Text: text, Page: pageNum})
		}
	}

	return units, nil
}
