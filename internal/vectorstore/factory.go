package vectorstore

import (
	"fmt"

	"github.com/fyrsmithlabs/policyd/internal/config"
	"go.uber.org/zap"
)

// NewStore creates a Store based on the configuration.
//
// The chromem provider (default) is embedded and needs no external
// services; the qdrant provider connects to an external Qdrant server over
// gRPC. Both use cosine distance.
func NewStore(cfg *config.Config, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.VectorStore.Provider {
	case "chromem", "":
		return NewChromemStore(ChromemConfig{
			Path:       cfg.VectorStore.Chromem.Path,
			Compress:   cfg.VectorStore.Chromem.Compress,
			Collection: cfg.VectorStore.Chromem.Collection,
			VectorSize: cfg.VectorStore.Chromem.VectorSize,
		}, embedder, logger)

	case "qdrant":
		return NewQdrantStore(QdrantConfig{
			Host:       cfg.VectorStore.Qdrant.Host,
			Port:       cfg.VectorStore.Qdrant.Port,
			Collection: cfg.VectorStore.Qdrant.Collection,
			VectorSize: uint64(cfg.VectorStore.Qdrant.VectorSize),
			UseTLS:     cfg.VectorStore.Qdrant.UseTLS,
		}, embedder, logger)

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q (supported: chromem, qdrant)",
			ErrInvalidConfig, cfg.VectorStore.Provider)
	}
}
