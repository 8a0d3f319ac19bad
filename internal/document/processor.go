package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Process extracts a document and splits it into chunks of at most size
// characters with the given overlap.
//
// PDF pages are always run through the chunker. DOCX paragraphs that already
// fit within size are kept whole so their single-paragraph locator is
// preserved instead of fragmenting; longer paragraphs are chunked.
//
// Returns ErrUnsupportedFormat for unrecognized extensions and ErrExtraction
// (wrapped) when the file cannot be parsed. Either way the caller can treat
// the failure as per-file and continue with the rest of an ingestion batch.
func Process(path string, size, overlap int) ([]Chunk, error) {
	source := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		units, err := ExtractPDF(path)
		if err != nil {
			return nil, err
		}
		return chunkPages(units, source, size, overlap)

	case ".docx", ".doc":
		units, err := ExtractDOCX(path)
		if err != nil {
			return nil, err
		}
		return chunkParagraphs(units, source, size, overlap)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// chunkPages splits every page into chunks, each tagged with its page number.
func chunkPages(units []Unit, source string, size, overlap int) ([]Chunk, error) {
	var chunks []Chunk
	for _, unit := range units {
		parts, err := SplitText(unit.Text, size, overlap)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			chunks = append(chunks, Chunk{Text: part, Source: source, Page: unit.Page})
		}
	}
	return chunks, nil
}

// chunkParagraphs keeps short paragraphs intact and chunks long ones.
func chunkParagraphs(units []Unit, source string, size, overlap int) ([]Chunk, error) {
	var chunks []Chunk
	for _, unit := range units {
		if utf8.RuneCountInString(unit.Text) <= size {
			chunks = append(chunks, Chunk{Text: unit.Text, Source: source, Paragraph: unit.Paragraph})
			continue
		}

		parts, err := SplitText(unit.Text, size, overlap)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			chunks = append(chunks, Chunk{Text: part, Source: source, Paragraph: unit.Paragraph})
		}
	}
	return chunks, nil
}
