// Package index ties the embedder and vector store into the retrieval
// index: build once per dataset load, search per question.
package index

import (
	"fmt"

	"go.uber.org/zap"

	"csvchat/internal/domain"
)

// Index embeds document chunks and answers nearest-neighbor queries
// over them. It is built once per dataset load and replaced, never
// merged.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	log      *zap.Logger
	size     int
	built    bool
}

// New creates an unbuilt index.
func New(embedder domain.Embedder, store domain.VectorStore, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{embedder: embedder, store: store, log: log}
}

// Build embeds every chunk and replaces the store contents. Corpus-
// trained embedders are prepared on the chunk texts first.
func (ix *Index) Build(chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}
	corpus := make([]string, len(chunks))
	for i, ch := range chunks {
		corpus[i] = ch.Text
	}
	if err := ix.embedder.Prepare(corpus); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	vectors := make([][]float64, len(chunks))
	for i, ch := range chunks {
		vec, err := ix.embedder.Embed(ch.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vec
	}
	if err := ix.store.Init(len(vectors[0])); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if err := ix.store.Upsert(chunks, vectors); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	ix.size = len(chunks)
	ix.built = true
	ix.log.Info("retrieval index built",
		zap.Int("chunks", len(chunks)),
		zap.Int("dimension", len(vectors[0])),
		zap.String("embedder", ix.embedder.Name()))
	return nil
}

// Built reports whether Build has completed successfully.
func (ix *Index) Built() bool { return ix.built }

// Search embeds the query and returns the topK most similar chunk
// texts, best first. Ties keep original chunk order. Searching an
// unbuilt or empty index returns no results rather than failing.
func (ix *Index) Search(query string, topK int) ([]string, error) {
	if !ix.built || ix.size == 0 {
		ix.log.Debug("search on empty index recovered", zap.Error(domain.ErrEmptyIndex))
		return nil, nil
	}
	vec, err := ix.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := ix.store.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return texts, nil
}
