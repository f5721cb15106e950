package collection

import (
	"context"
	"log/slog"

	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/store"
)

const (
	// recommendLimit is the number of recommendations returned.
	recommendLimit = 10
	// recommendQueryLimit over-fetches because the caller's own records
	// must be excluded after the query: the index filter only supports
	// equality, not exclusion.
	recommendQueryLimit = 20
)

// Recommendation is a cross-user discovery result. Exactly one of Hobby
// or Item is set, according to Kind.
type Recommendation struct {
	Kind  string
	Hobby *store.Hobby
	Item  *store.Item
	Score float32
}

// Recommendations returns up to ten hobbies and items from other users
// closest to the centroid of the caller's own hobby embeddings. The
// caller's own records never appear. A missing index, missing embeddings
// or a query failure all degrade to an empty result.
func (s *Service) Recommendations(ctx context.Context, user *store.User) ([]*Recommendation, error) {
	hobbies, err := s.ListHobbies(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(hobbies) == 0 || s.index == nil {
		return []*Recommendation{}, nil
	}

	// Build the taste profile from whatever embeddings the index holds.
	// Hobbies without an index record are skipped.
	vectors := make([][]float32, 0, len(hobbies))
	for _, hobby := range hobbies {
		record, err := s.index.Fetch(ctx, hobby.UID)
		if err != nil {
			slog.Warn("failed to fetch hobby embedding", "hobby", hobby.UID, "error", err)
			continue
		}
		if record == nil {
			continue
		}
		vectors = append(vectors, record.Vector)
	}
	if len(vectors) == 0 {
		return []*Recommendation{}, nil
	}

	results, err := s.index.Query(ctx, averageVectors(vectors), recommendQueryLimit, nil)
	if err != nil {
		slog.Warn("failed to query vector index for recommendations", "user", user.UID, "error", err)
		return []*Recommendation{}, nil
	}

	// Exclude the caller's own records, then truncate.
	filtered := make([]vector.Result, 0, len(results))
	for _, result := range results {
		if result.Metadata.UserID == user.ID {
			continue
		}
		filtered = append(filtered, result)
	}
	if len(filtered) > recommendLimit {
		filtered = filtered[:recommendLimit]
	}
	if len(filtered) == 0 {
		return []*Recommendation{}, nil
	}

	hobbyUIDs := make([]string, 0, len(filtered))
	itemUIDs := make([]string, 0, len(filtered))
	for _, result := range filtered {
		switch result.Metadata.Kind {
		case vector.KindHobby:
			hobbyUIDs = append(hobbyUIDs, result.ID)
		case vector.KindItem:
			itemUIDs = append(itemUIDs, result.ID)
		}
	}

	hobbyByUID := make(map[string]*store.Hobby, len(hobbyUIDs))
	if len(hobbyUIDs) > 0 {
		list, err := s.store.ListHobbies(ctx, &store.FindHobby{UIDs: hobbyUIDs})
		if err != nil {
			slog.Warn("failed to hydrate recommended hobbies", "error", err)
			return []*Recommendation{}, nil
		}
		for _, h := range list {
			hobbyByUID[h.UID] = h
		}
	}
	itemByUID := make(map[string]*store.Item, len(itemUIDs))
	if len(itemUIDs) > 0 {
		list, err := s.store.ListItems(ctx, &store.FindItem{UIDs: itemUIDs})
		if err != nil {
			slog.Warn("failed to hydrate recommended items", "error", err)
			return []*Recommendation{}, nil
		}
		for _, item := range list {
			itemByUID[item.UID] = item
		}
	}

	recommendations := make([]*Recommendation, 0, len(filtered))
	for _, result := range filtered {
		switch result.Metadata.Kind {
		case vector.KindHobby:
			if h, ok := hobbyByUID[result.ID]; ok {
				recommendations = append(recommendations, &Recommendation{
					Kind:  vector.KindHobby,
					Hobby: h,
					Score: result.Score,
				})
			}
		case vector.KindItem:
			if item, ok := itemByUID[result.ID]; ok {
				recommendations = append(recommendations, &Recommendation{
					Kind:  vector.KindItem,
					Item:  item,
					Score: result.Score,
				})
			}
		}
	}
	return recommendations, nil
}

// averageVectors computes the component-wise mean of same-length vectors.
func averageVectors(vectors [][]float32) []float32 {
	mean := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i := range mean {
			if i < len(v) {
				mean[i] += v[i]
			}
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}
	return mean
}
