package collection

import (
	"context"
	"log/slog"

	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/store"
)

const (
	// similarLimit is the number of similar hobbies returned to the caller.
	similarLimit = 5
	// similarQueryLimit over-fetches by one because the anchor hobby is
	// expected among its own nearest neighbors.
	similarQueryLimit = similarLimit + 1
)

// ScoredHobby pairs a hobby with its similarity score, in [0, 1].
type ScoredHobby struct {
	Hobby *store.Hobby
	Score float32
}

// SimilarHobbies returns up to five of the caller's own hobbies most
// similar to the anchor, ordered by the index's ranking. The feature is
// best-effort: a missing index, a missing anchor embedding or a query
// failure all degrade to an empty result. Ownership of the anchor is
// still enforced before touching the index.
func (s *Service) SimilarHobbies(ctx context.Context, user *store.User, hobbyUID string) ([]*ScoredHobby, error) {
	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return nil, err
	}

	if s.index == nil {
		return []*ScoredHobby{}, nil
	}

	anchor, err := s.index.Fetch(ctx, hobby.UID)
	if err != nil {
		slog.Warn("failed to fetch anchor embedding", "hobby", hobby.UID, "error", err)
		return []*ScoredHobby{}, nil
	}
	if anchor == nil {
		return []*ScoredHobby{}, nil
	}

	kind := vector.KindHobby
	results, err := s.index.Query(ctx, anchor.Vector, similarQueryLimit, &vector.Filter{
		UserID: &user.ID,
		Kind:   &kind,
	})
	if err != nil {
		slog.Warn("failed to query vector index", "hobby", hobby.UID, "error", err)
		return []*ScoredHobby{}, nil
	}

	// Drop the anchor itself, then truncate to the caller-facing limit.
	filtered := make([]vector.Result, 0, len(results))
	for _, result := range results {
		if result.ID == hobby.UID {
			continue
		}
		filtered = append(filtered, result)
	}
	if len(filtered) > similarLimit {
		filtered = filtered[:similarLimit]
	}
	if len(filtered) == 0 {
		return []*ScoredHobby{}, nil
	}

	uids := make([]string, 0, len(filtered))
	for _, result := range filtered {
		uids = append(uids, result.ID)
	}
	hobbies, err := s.store.ListHobbies(ctx, &store.FindHobby{UIDs: uids, UserID: &user.ID})
	if err != nil {
		slog.Warn("failed to hydrate similar hobbies", "hobby", hobby.UID, "error", err)
		return []*ScoredHobby{}, nil
	}
	byUID := make(map[string]*store.Hobby, len(hobbies))
	for _, h := range hobbies {
		byUID[h.UID] = h
	}

	// Preserve the index ranking; skip stale index records that no
	// longer hydrate from the store.
	scored := make([]*ScoredHobby, 0, len(filtered))
	for _, result := range filtered {
		h, ok := byUID[result.ID]
		if !ok {
			continue
		}
		scored = append(scored, &ScoredHobby{Hobby: h, Score: result.Score})
	}
	return scored, nil
}
