// Package retriever turns a question into a ranked, relevance-filtered
// list of supporting policy chunks.
package retriever

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/policyd/internal/vectorstore"
	"go.uber.org/zap"
)

// DefaultTopK is the number of candidates fetched per question.
const DefaultTopK = 5

// DefaultMaxDistance is the relevance threshold. Results with cosine
// distance at or above this value are discarded; 0.69 is kept, 0.70 is
// dropped.
const DefaultMaxDistance float32 = 0.7

// Document is one retrieved policy chunk with provenance and distance.
// Page and Paragraph carry the stringified locator from the index; at most
// one is non-empty.
type Document struct {
	Text      string
	Source    string
	Page      string
	Paragraph string

	// Distance is the cosine distance to the question, in [0,2].
	Distance float32
}

// Result is the outcome of one retrieval.
type Result struct {
	// Documents is the relevance-filtered sequence, best match first.
	Documents []Document

	// TotalMatches is the number of matches before filtering. It lets the
	// caller distinguish an empty collection (0) from a collection where
	// nothing was relevant enough (> 0 with empty Documents).
	TotalMatches int
}

// Retriever wraps the vector store with relevance filtering.
type Retriever struct {
	store       vectorstore.Store
	topK        int
	maxDistance float32
	logger      *zap.Logger
}

// New creates a Retriever. Non-positive topK and maxDistance fall back to
// the defaults.
func New(store vectorstore.Store, topK int, maxDistance float32, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		store:       store,
		topK:        topK,
		maxDistance: maxDistance,
		logger:      logger,
	}
}

// Retrieve queries the index and keeps only results below the relevance
// threshold, preserving the ascending-distance order of the search.
func (r *Retriever) Retrieve(ctx context.Context, question string) (Result, error) {
	matches, err := r.store.Search(ctx, question, r.topK)
	if err != nil {
		return Result{}, fmt.Errorf("searching index: %w", err)
	}

	result := Result{TotalMatches: len(matches)}
	for _, m := range matches {
		if m.Distance >= r.maxDistance {
			continue
		}
		result.Documents = append(result.Documents, Document{
			Text:      m.Content,
			Source:    m.Metadata[vectorstore.MetaSource],
			Page:      m.Metadata[vectorstore.MetaPage],
			Paragraph: m.Metadata[vectorstore.MetaParagraph],
			Distance:  m.Distance,
		})
	}

	r.logger.Debug("retrieved chunks",
		zap.Int("matches", result.TotalMatches),
		zap.Int("relevant", len(result.Documents)),
	)

	return result, nil
}
