// Package ingest turns policy files into indexed chunks.
package ingest

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/policyd/internal/document"
	"github.com/fyrsmithlabs/policyd/internal/vectorstore"
)

// FileError records a file that could not be ingested.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Summary aggregates the outcome of one ingestion batch.
type Summary struct {
	// BatchID identifies this ingestion run in logs.
	BatchID string

	// FilesProcessed counts files whose chunks reached the index.
	FilesProcessed int

	// ChunksAdded counts chunks written across all files.
	ChunksAdded int

	// Errors lists files that were skipped, one entry per failed file.
	Errors []FileError
}

// Service ingests policy documents into the vector store.
type Service struct {
	store     vectorstore.Store
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

// New creates an ingestion Service.
func New(store vectorstore.Store, chunkSize, overlap int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}
}

// IngestFiles extracts, chunks, and indexes each file in turn.
//
// Extraction failures and unsupported formats are recoverable: the file is
// recorded in the summary and the batch continues. Embedding or storage
// failures abort the batch, since later files would fail the same way.
func (s *Service) IngestFiles(ctx context.Context, paths []string) (Summary, error) {
	summary := Summary{BatchID: uuid.NewString()}
	logger := s.logger.With(zap.String("batch_id", summary.BatchID))

	for _, path := range paths {
		chunks, err := document.Process(path, s.chunkSize, s.overlap)
		if err != nil {
			if errors.Is(err, document.ErrUnsupportedFormat) || errors.Is(err, document.ErrExtraction) {
				logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
				summary.Errors = append(summary.Errors, FileError{Path: path, Err: err})
				continue
			}
			return summary, FileError{Path: path, Err: err}
		}

		docs := make([]vectorstore.Document, 0, len(chunks))
		for _, chunk := range chunks {
			docs = append(docs, vectorstore.Document{
				Content:  chunk.Text,
				Metadata: chunkMetadata(chunk),
			})
		}

		if _, err := s.store.Add(ctx, docs); err != nil {
			return summary, FileError{Path: path, Err: err}
		}

		summary.FilesProcessed++
		summary.ChunksAdded += len(docs)
		logger.Info("file ingested",
			zap.String("path", path),
			zap.Int("chunks", len(docs)),
		)
	}

	logger.Info("ingestion finished",
		zap.Int("files", summary.FilesProcessed),
		zap.Int("chunks", summary.ChunksAdded),
		zap.Int("failed", len(summary.Errors)),
	)

	return summary, nil
}

func chunkMetadata(chunk document.Chunk) map[string]string {
	meta := map[string]string{
		vectorstore.MetaSource: chunk.Source,
	}
	if chunk.Page > 0 {
		meta[vectorstore.MetaPage] = strconv.Itoa(chunk.Page)
	}
	if chunk.Paragraph > 0 {
		meta[vectorstore.MetaParagraph] = strconv.Itoa(chunk.Paragraph)
	}
	return meta
}
