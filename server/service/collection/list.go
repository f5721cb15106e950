package collection

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/store"
)

// itemFetchConcurrency bounds the parallel item lookups in list views.
const itemFetchConcurrency = 4

// HobbyWithItems is a hobby together with its items, for list views.
type HobbyWithItems struct {
	Hobby *store.Hobby
	Items []*store.Item
}

// ListHobbiesWithItems returns the user's hobbies newest first, each
// hydrated with its items. Item lookups run concurrently.
func (s *Service) ListHobbiesWithItems(ctx context.Context, user *store.User) ([]*HobbyWithItems, error) {
	hobbies, err := s.ListHobbies(ctx, user)
	if err != nil {
		return nil, err
	}

	result := make([]*HobbyWithItems, len(hobbies))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(itemFetchConcurrency)
	for i, hobby := range hobbies {
		eg.Go(func() error {
			items, err := s.store.ListItems(egCtx, &store.FindItem{HobbyID: &hobby.ID})
			if err != nil {
				return err
			}
			result[i] = &HobbyWithItems{Hobby: hobby, Items: items}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errcode.Internal("failed to list items", err)
	}
	return result, nil
}
