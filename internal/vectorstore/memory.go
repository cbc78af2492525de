// Package vectorstore provides the in-memory backing store for the
// retrieval index. The store is rebuilt wholesale on every dataset load.
package vectorstore

import (
	"errors"
	"sort"
	"sync"

	"csvchat/internal/domain"
)

// Memory is a brute-force cosine-similarity store. Vectors are assumed
// L2-normalized, so the dot product is the cosine similarity.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.DocumentChunk
}

// NewMemory creates an empty store.
func NewMemory() *Memory { return &Memory{} }

// Init sets the vector dimension and drops any existing content.
func (s *Memory) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Upsert appends chunk/vector pairs. Insertion order is preserved and
// acts as the tie-break order during search.
func (s *Memory) Upsert(chunks []domain.DocumentChunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK most similar chunks, best first. Equal scores
// keep insertion order (stable sort), so results are deterministic.
func (s *Memory) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = dot(s.vectors[i], vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Clear removes all stored content but keeps the dimension.
func (s *Memory) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
