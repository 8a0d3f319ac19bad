package vectorstore_test

import (
	"testing"

	"github.com/fyrsmithlabs/policyd/internal/config"
	"github.com/fyrsmithlabs/policyd/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStore_Chromem(t *testing.T) {
	cfg := &config.Config{}
	cfg.VectorStore.Provider = "chromem"
	cfg.VectorStore.Chromem.Path = t.TempDir()
	cfg.VectorStore.Chromem.Collection = "test_policies"
	cfg.VectorStore.Chromem.VectorSize = 64

	store, err := vectorstore.NewStore(cfg, &testEmbedder{vectorSize: 64}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &vectorstore.ChromemStore{}, store)
}

func TestNewStore_UnsupportedProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.VectorStore.Provider = "milvus"

	_, err := vectorstore.NewStore(cfg, &testEmbedder{vectorSize: 64}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
}
