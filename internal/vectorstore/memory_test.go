package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/domain"
)

func TestMemory_ImplementsVectorStore(t *testing.T) {
	var _ domain.VectorStore = (*Memory)(nil)
}

func chunksOf(texts ...string) []domain.DocumentChunk {
	out := make([]domain.DocumentChunk, len(texts))
	for i, tx := range texts {
		out[i] = domain.DocumentChunk{Text: tx, Index: i}
	}
	return out
}

func TestMemory_InitValidation(t *testing.T) {
	s := NewMemory()
	require.Error(t, s.Init(0))
	require.Error(t, s.Init(-3))
	require.NoError(t, s.Init(2))
}

func TestMemory_UpsertValidation(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))

	err := s.Upsert(chunksOf("a"), [][]float64{{1, 0}, {0, 1}})
	assert.Error(t, err)

	err = s.Upsert(chunksOf("a"), [][]float64{{1, 0, 0}})
	assert.Error(t, err)
}

func TestMemory_SearchOrdersByScore(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		chunksOf("east", "north", "northeast"),
		[][]float64{{1, 0}, {0, 1}, {0.707, 0.707}},
	))

	results, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].Chunk.Text)
	assert.Equal(t, "northeast", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemory_SearchTiesKeepInsertionOrder(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		chunksOf("first", "second", "third"),
		[][]float64{{0, 1}, {0, 1}, {0, 1}},
	))

	results, err := s.Search([]float64{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
	assert.Equal(t, "third", results[2].Chunk.Text)
}

func TestMemory_SearchEmptyStore(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))
	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemory_SearchCapsAtStoreSize(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(chunksOf("only"), [][]float64{{1, 0}}))

	results, err := s.Search([]float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemory_Clear(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(chunksOf("a"), [][]float64{{1, 0}}))
	require.NoError(t, s.Clear())

	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
