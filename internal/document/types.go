// Package document extracts text from HR policy files and splits it into
// bounded, overlapping chunks with source provenance.
//
// Two formats are supported: PDF (extracted page by page) and DOCX
// (extracted paragraph by paragraph). Each emitted chunk carries the source
// file name and exactly one locator, a page number or a paragraph number.
package document

import "errors"

// Sentinel errors for document processing.
var (
	// ErrUnsupportedFormat is returned for file extensions that are not handled.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction is returned when a document cannot be parsed.
	ErrExtraction = errors.New("failed to extract document text")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrOverlapTooLarge is returned when the overlap would prevent the
	// chunking window from advancing.
	ErrOverlapTooLarge = errors.New("overlap must be smaller than chunk size and non-negative")
)

// Unit is one extraction unit: a page of a PDF or a paragraph of a DOCX.
// Exactly one of Page/Paragraph is set (1-based).
type Unit struct {
	Text      string
	Page      int
	Paragraph int
}

// Chunk is a bounded span of document text with provenance.
// Exactly one of Page/Paragraph is set, matching the originating format.
type Chunk struct {
	Text      string
	Source    string
	Page      int
	Paragraph int
}
