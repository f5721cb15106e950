package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory cosine-similarity index. It backs dev and
// demo installs and doubles as the test double for the external index.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		records: make(map[string]*Record),
	}
}

// Upsert inserts or overwrites a record.
func (m *MemoryIndex) Upsert(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec := make([]float32, len(record.Vector))
	copy(vec, record.Vector)
	m.records[record.ID] = &Record{
		ID:       record.ID,
		Vector:   vec,
		Metadata: record.Metadata,
	}
	return nil
}

// Fetch returns the record for the given ID, or nil when absent.
func (m *MemoryIndex) Fetch(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	vec := make([]float32, len(record.Vector))
	copy(vec, record.Vector)
	return &Record{ID: record.ID, Vector: vec, Metadata: record.Metadata}, nil
}

// Delete removes a record.
func (m *MemoryIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Query returns up to limit records nearest to the given vector.
func (m *MemoryIndex) Query(_ context.Context, vector []float32, limit int, filter *Filter) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []Result{}
	for _, record := range m.records {
		if !filter.matches(record.Metadata) {
			continue
		}
		results = append(results, Result{
			ID:       record.ID,
			Score:    cosineSimilarity(vector, record.Vector),
			Metadata: record.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors,
// clamped to [0, 1] to match the Result.Score contract.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	raw := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return float32(raw)
}

// Ensure MemoryIndex implements Index
var _ Index = (*MemoryIndex)(nil)
