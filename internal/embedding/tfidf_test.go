package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/domain"
)

func TestTFIDF_ImplementsEmbedder(t *testing.T) {
	var _ domain.Embedder = (*TFIDF)(nil)
}

func TestTFIDF_PrepareEmptyCorpus(t *testing.T) {
	e := NewTFIDF()
	require.Error(t, e.Prepare(nil))
}

func TestTFIDF_EmbedBeforePrepare(t *testing.T) {
	e := NewTFIDF()
	_, err := e.Embed("anything")
	require.Error(t, err)
}

func TestTFIDF_Deterministic(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Prepare([]string{"price of apples", "count of rows"}))

	a, err := e.Embed("price of apples")
	require.NoError(t, err)
	b, err := e.Embed("price of apples")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTFIDF_VectorsAreNormalized(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Prepare([]string{"alpha beta", "beta gamma", "gamma delta"}))

	vec, err := e.Embed("alpha beta")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestTFIDF_TokenizesDigitsAndUnderscores(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Prepare([]string{"user_id 42", "price 100"}))

	vec, err := e.Embed("user_id")
	require.NoError(t, err)
	nonZero := 0
	for _, v := range vec {
		if v != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestTFIDF_UnknownVocabularyIsZeroVector(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Prepare([]string{"alpha beta"}))

	vec, err := e.Embed("completely unrelated words")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
