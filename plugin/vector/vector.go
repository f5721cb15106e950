// Package vector provides the nearest-neighbor index used for similarity
// search and recommendations. The index is a derived, best-effort cache:
// callers must tolerate it being absent or failing without affecting
// primary data.
package vector

import "context"

// Kind identifies the owning entity type of an index record.
const (
	KindHobby = "hobby"
	KindItem  = "item"
)

// Metadata describes the entity behind an embedding.
type Metadata struct {
	Kind     string `json:"kind"` // "hobby" or "item"
	UserID   int32  `json:"user_id"`
	HobbyUID string `json:"hobby_uid,omitempty"` // parent hobby, set for items
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Record is an embedding keyed by the entity UID.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Result is a single query match.
type Result struct {
	ID       string
	Score    float32 // similarity score 0-1, semantics owned by the backend
	Metadata Metadata
}

// Filter restricts a query by metadata equality. The predicate supports
// equality only; negative conditions must be applied by the caller after
// the query returns.
type Filter struct {
	UserID *int32
	Kind   *string
}

// Index is the nearest-neighbor store interface.
type Index interface {
	// Upsert inserts or overwrites the record keyed by its ID.
	Upsert(ctx context.Context, record *Record) error

	// Fetch returns the record for the given ID, or nil when absent.
	Fetch(ctx context.Context, id string) (*Record, error)

	// Delete removes the record for the given ID. Deleting an absent
	// record is not an error.
	Delete(ctx context.Context, id string) error

	// Query returns up to limit records nearest to the given vector,
	// most similar first.
	Query(ctx context.Context, vector []float32, limit int, filter *Filter) ([]Result, error)
}

func (f *Filter) matches(m Metadata) bool {
	if f == nil {
		return true
	}
	if f.UserID != nil && m.UserID != *f.UserID {
		return false
	}
	if f.Kind != nil && m.Kind != *f.Kind {
		return false
	}
	return true
}
