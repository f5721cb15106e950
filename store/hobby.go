package store

import "context"

// Hobby is a top-level user-owned collection of interest.
type Hobby struct {
	ID          int32
	UID         string
	UserID      int32
	Name        string
	Description string
	Category    *string  // user-supplied or AI-derived, nullable
	Tags        []string // ordered, AI-derived, may be empty but never nil
	CreatedTs   int64
	UpdatedTs   int64
}

// FindHobby is the find condition for hobbies.
type FindHobby struct {
	ID     *int32
	UID    *string
	UserID *int32
	UIDs   []string
	Limit  *int
	Offset *int
}

// UpdateHobby carries a partial update. Nil fields are left unchanged;
// Tags is replaced whenever non-nil.
type UpdateHobby struct {
	ID            int32
	Name          *string
	Description   *string
	Category      *string
	ClearCategory bool
	Tags          []string
	UpdatedTs     *int64
}

// DeleteHobby deletes the hobby and cascades to its items.
type DeleteHobby struct {
	ID int32
}

func (s *Store) CreateHobby(ctx context.Context, create *Hobby) (*Hobby, error) {
	return s.driver.CreateHobby(ctx, create)
}

// GetHobby returns the single hobby matching the find condition, or nil.
func (s *Store) GetHobby(ctx context.Context, find *FindHobby) (*Hobby, error) {
	list, err := s.driver.ListHobbies(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListHobbies lists hobbies ordered newest-first.
func (s *Store) ListHobbies(ctx context.Context, find *FindHobby) ([]*Hobby, error) {
	return s.driver.ListHobbies(ctx, find)
}

func (s *Store) UpdateHobby(ctx context.Context, update *UpdateHobby) (*Hobby, error) {
	return s.driver.UpdateHobby(ctx, update)
}

func (s *Store) DeleteHobby(ctx context.Context, delete *DeleteHobby) error {
	return s.driver.DeleteHobby(ctx, delete)
}
