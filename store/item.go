package store

import "context"

// Item is a record nested under a hobby.
type Item struct {
	ID          int32
	UID         string
	HobbyID     int32
	Name        string
	Description string
	Category    *string
	Tags        []string
	ImageRef    *string // filename under the data dir, optional
	CreatedTs   int64
	UpdatedTs   int64
}

// FindItem is the find condition for items.
type FindItem struct {
	ID      *int32
	UID     *string
	HobbyID *int32
	UIDs    []string
	Limit   *int
	Offset  *int
}

// UpdateItem carries a partial update. Nil fields are left unchanged;
// Tags is replaced whenever non-nil.
type UpdateItem struct {
	ID            int32
	Name          *string
	Description   *string
	Category      *string
	ClearCategory bool
	Tags          []string
	ImageRef      *string
	UpdatedTs     *int64
}

// DeleteItem deletes a single item.
type DeleteItem struct {
	ID int32
}

func (s *Store) CreateItem(ctx context.Context, create *Item) (*Item, error) {
	return s.driver.CreateItem(ctx, create)
}

// GetItem returns the single item matching the find condition, or nil.
func (s *Store) GetItem(ctx context.Context, find *FindItem) (*Item, error) {
	list, err := s.driver.ListItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListItems lists items ordered newest-first.
func (s *Store) ListItems(ctx context.Context, find *FindItem) ([]*Item, error) {
	return s.driver.ListItems(ctx, find)
}

func (s *Store) UpdateItem(ctx context.Context, update *UpdateItem) (*Item, error) {
	return s.driver.UpdateItem(ctx, update)
}

func (s *Store) DeleteItem(ctx context.Context, delete *DeleteItem) error {
	return s.driver.DeleteItem(ctx, delete)
}
