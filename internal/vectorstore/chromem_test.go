package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/policyd/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEmbedder returns deterministic normalized vectors so identical texts
// embed identically and similar character distributions land close together.
type testEmbedder struct {
	vectorSize int
	failNext   bool
}

func (e *testEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if e.failNext {
		return nil, errors.New("embedding backend unavailable")
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.makeEmbedding(text)
	}
	return embeddings, nil
}

func (e *testEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.failNext {
		return nil, errors.New("embedding backend unavailable")
	}
	return e.makeEmbedding(text), nil
}

// makeEmbedding builds a unit vector from character counts.
func (e *testEmbedder) makeEmbedding(text string) []float32 {
	embedding := make([]float32, e.vectorSize)
	for _, c := range text {
		embedding[int(c)%e.vectorSize]++
	}
	var sumSq float32
	for _, v := range embedding {
		sumSq += v * v
	}
	if sumSq > 0 {
		norm := sqrt32(sumSq)
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x / 2
	for i := 0; i < 10; i++ {
		z = (z + x/z) / 2
	}
	return z
}

func newTestStore(t *testing.T) *vectorstore.ChromemStore {
	t.Helper()

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       t.TempDir(),
		Collection: "test_policies",
		VectorSize: 64,
	}, &testEmbedder{vectorSize: 64}, zap.NewNop())
	require.NoError(t, err)

	return store
}

func policyDoc(text, source, page string) vectorstore.Document {
	metadata := map[string]string{vectorstore.MetaSource: source}
	if page != "" {
		metadata[vectorstore.MetaPage] = page
	}
	return vectorstore.Document{Content: text, Metadata: metadata}
}

func TestChromemConfig_ApplyDefaults(t *testing.T) {
	config := vectorstore.ChromemConfig{}
	config.ApplyDefaults()

	assert.Equal(t, "~/.local/share/policyd/vectorstore", config.Path)
	assert.Equal(t, "hr_policies", config.Collection)
	assert.Equal(t, 384, config.VectorSize)
}

func TestNewChromemStore_RequiresEmbedder(t *testing.T) {
	_, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{Path: t.TempDir()}, nil, zap.NewNop())
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
}

func TestChromemStore_AddEmptyIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.Add(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChromemStore_AddThenCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []vectorstore.Document{
		policyDoc("Employees receive 25 vacation days per year.", "policy.pdf", "3"),
		policyDoc("Parental leave follows statutory rules.", "policy.pdf", "4"),
		policyDoc("Remote work requires manager approval.", "remote.docx", ""),
	}

	ids, err := store.Add(ctx, docs)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChromemStore_RepeatedIngestionUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []vectorstore.Document{
		policyDoc("Employees receive 25 vacation days per year.", "policy.pdf", "3"),
		policyDoc("Parental leave follows statutory rules.", "policy.pdf", "4"),
	}

	first, err := store.Add(ctx, docs)
	require.NoError(t, err)
	second, err := store.Add(ctx, docs)
	require.NoError(t, err)

	// Content-derived IDs are stable, so re-ingestion overwrites in place.
	assert.Equal(t, first, second)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChromemStore_EmbeddingFailureCommitsNothing(t *testing.T) {
	embedder := &testEmbedder{vectorSize: 64}
	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       t.TempDir(),
		Collection: "test_policies",
		VectorSize: 64,
	}, embedder, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	embedder.failNext = true

	_, err = store.Add(ctx, []vectorstore.Document{policyDoc("some text", "a.pdf", "1")})
	assert.ErrorIs(t, err, vectorstore.ErrEmbeddingFailed)

	embedder.failNext = false
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChromemStore_SearchEmptyCollection(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Search(context.Background(), "vacation days", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStore_SearchOrderedByDistance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, []vectorstore.Document{
		policyDoc("Employees receive 25 vacation days per year.", "policy.pdf", "3"),
		policyDoc("The office dress code is business casual.", "dress.docx", ""),
		policyDoc("Sick leave requires a doctor's note after one week.", "policy.pdf", "7"),
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "Employees receive 25 vacation days per year.", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Exact text match comes first with near-zero distance.
	assert.Equal(t, "Employees receive 25 vacation days per year.", results[0].Content)
	assert.InDelta(t, 0, results[0].Distance, 1e-5)
	assert.Equal(t, "policy.pdf", results[0].Metadata[vectorstore.MetaSource])
	assert.Equal(t, "3", results[0].Metadata[vectorstore.MetaPage])

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
}

func TestChromemStore_SearchCapsKAtCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, []vectorstore.Document{
		policyDoc("One single policy chunk.", "policy.pdf", "1"),
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "policy", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStore_SearchInvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, "", 5)
	assert.Error(t, err)

	_, err = store.Search(ctx, "question", 0)
	assert.Error(t, err)
}

func TestChromemStore_ClearThenReuse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, []vectorstore.Document{
		policyDoc("Chunk one.", "a.pdf", "1"),
		policyDoc("Chunk two.", "a.pdf", "2"),
	})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Collection must be usable after clear.
	_, err = store.Add(ctx, []vectorstore.Document{policyDoc("Fresh chunk.", "b.docx", "")})
	require.NoError(t, err)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChromemStore_MissingSourceDefaultsToUnknown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, []vectorstore.Document{{Content: "Orphan chunk."}})
	require.NoError(t, err)

	results, err := store.Search(ctx, "Orphan chunk.", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unknown", results[0].Metadata[vectorstore.MetaSource])
}

func TestChromemStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	embedder := &testEmbedder{vectorSize: 64}
	config := vectorstore.ChromemConfig{Path: dir, Collection: "test_policies", VectorSize: 64}
	ctx := context.Background()

	store, err := vectorstore.NewChromemStore(config, embedder, zap.NewNop())
	require.NoError(t, err)
	_, err = store.Add(ctx, []vectorstore.Document{policyDoc("Persisted chunk.", "a.pdf", "1")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := vectorstore.NewChromemStore(config, embedder, zap.NewNop())
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
