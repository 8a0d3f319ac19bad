package vectorstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Metadata keys persisted per chunk. Page and paragraph values are stored
// as strings even though they are logically integers.
const (
	MetaSource    = "source"
	MetaPage      = "page"
	MetaParagraph = "paragraph"
)

// Document represents a policy chunk to be stored in the vector store.
type Document struct {
	// ID is the unique identifier. Left empty, the store derives one from
	// the document's content and metadata.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata carries provenance: source (required) and page or paragraph.
	Metadata map[string]string
}

// SearchResult is one similarity match.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Distance is the cosine distance to the query, in [0,2].
	// Lower means more similar.
	Distance float32

	// Metadata contains the document metadata.
	Metadata map[string]string
}

// contentID derives a deterministic identifier from a document's content,
// metadata, and position within its batch. Re-ingesting the same file
// produces the same IDs, so repeated ingestion upserts instead of
// accumulating duplicate entries under colliding fresh IDs.
func contentID(doc Document, batchIndex int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|",
		doc.Metadata[MetaSource], doc.Metadata[MetaPage], doc.Metadata[MetaParagraph], batchIndex)
	h.Write([]byte(doc.Content))
	return "doc_" + hex.EncodeToString(h.Sum(nil))[:24]
}
