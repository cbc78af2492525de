package answer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/domain"
)

type fakeRetriever struct {
	built     bool
	results   []string
	err       error
	lastQuery string
	lastK     int
}

func (r *fakeRetriever) Built() bool { return r.built }

func (r *fakeRetriever) Search(query string, topK int) ([]string, error) {
	r.lastQuery = query
	r.lastK = topK
	return r.results, r.err
}

type fakeModel struct {
	reply      string
	err        error
	lastPrompt string
}

func (m *fakeModel) Generate(prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.reply, m.err
}

func TestAnswer_NotInitialized(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generator
	}{
		{"nil retriever", New(nil, &fakeModel{}, 4)},
		{"nil model", New(&fakeRetriever{built: true}, nil, 4)},
		{"unbuilt index", New(&fakeRetriever{built: false}, &fakeModel{}, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.gen.Answer("how many rows")
			require.NoError(t, err)
			assert.Equal(t, NotInitialized, result.Answer)
			assert.Empty(t, result.Sources)
		})
	}
}

func TestAnswer_PromptCarriesContextAndQuestion(t *testing.T) {
	retriever := &fakeRetriever{built: true, results: []string{"chunk one", "chunk two"}}
	model := &fakeModel{reply: "42"}
	gen := New(retriever, model, 3)

	result, err := gen.Answer("How many rows are there?")
	require.NoError(t, err)
	assert.Equal(t, "42", result.Answer)
	assert.Equal(t, []string{"chunk one", "chunk two"}, result.Sources)

	assert.Equal(t, "How many rows are there?", retriever.lastQuery)
	assert.Equal(t, 3, retriever.lastK)
	assert.Contains(t, model.lastPrompt, "don't try to make up an answer")
	assert.Contains(t, model.lastPrompt, "chunk one\n\nchunk two")
	assert.Contains(t, model.lastPrompt, "Question: How many rows are there?")
}

func TestAnswer_RetrievalFailure(t *testing.T) {
	gen := New(&fakeRetriever{built: true, err: errors.New("embed blew up")}, &fakeModel{}, 4)
	_, err := gen.Answer("anything")
	require.ErrorIs(t, err, domain.ErrGeneration)
}

func TestAnswer_ModelFailure(t *testing.T) {
	retriever := &fakeRetriever{built: true, results: []string{"context"}}
	gen := New(retriever, &fakeModel{err: errors.New("model down")}, 4)
	_, err := gen.Answer("anything")
	require.ErrorIs(t, err, domain.ErrGeneration)
}

func TestNew_DefaultTopK(t *testing.T) {
	retriever := &fakeRetriever{built: true}
	gen := New(retriever, &fakeModel{}, 0)
	_, err := gen.Answer("q")
	require.NoError(t, err)
	assert.Equal(t, 4, retriever.lastK)
}
