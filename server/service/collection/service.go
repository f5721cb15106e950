// Package collection implements hobby/item management with AI enrichment
// and best-effort vector indexing. Every mutation persists the relational
// record first, then propagates to the vector index; index failures are
// logged and swallowed so primary data never depends on index health.
package collection

import (
	"context"
	"log/slog"

	"github.com/lithammer/shortuuid/v4"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/server/ai"
	"github.com/curiocodex/curiocodex/store"
)

// Service orchestrates the relational store, the AI enrichment gateway
// and the vector index. Both enricher and index are optional capabilities:
// a nil enricher skips AI enrichment, a nil index disables similarity and
// recommendation features.
type Service struct {
	store    *store.Store
	enricher ai.Enricher
	index    vector.Index
}

// NewService creates the collection service.
func NewService(st *store.Store, enricher ai.Enricher, index vector.Index) *Service {
	return &Service{
		store:    st,
		enricher: enricher,
		index:    index,
	}
}

// UpsertHobbyRequest carries the caller-supplied fields for a hobby
// create or update. Category, when set, is a manual override that always
// wins over AI categorization.
type UpsertHobbyRequest struct {
	Name        string
	Description string
	Category    string
}

// UpsertItemRequest carries the caller-supplied fields for an item
// create or update.
type UpsertItemRequest struct {
	Name        string
	Description string
	Category    string
	ImageRef    string
}

// enrichment is the derived output of the AI gateway for one record.
type enrichment struct {
	category *string
	tags     []string
	vector   []float32
}

// enrich runs the full AI pipeline for a record. The manual category
// short-circuits categorization but tag extraction always runs. Any AI
// gateway failure is a hard error: the whole operation aborts.
func (s *Service) enrich(ctx context.Context, name, description, manualCategory string) (*enrichment, error) {
	if manualCategory != "" {
		e := &enrichment{tags: []string{}}
		category := manualCategory
		e.category = &category
		if s.enricher == nil {
			return e, nil
		}
		var err error
		if e.vector, err = s.enricher.Embed(ctx, ai.EmbeddingText(name, description)); err != nil {
			return nil, errcode.Internal("failed to generate embedding", err)
		}
		if e.tags, err = s.enricher.ExtractTags(ctx, name, description); err != nil {
			return nil, errcode.Internal("failed to extract tags", err)
		}
		return e, nil
	}

	if s.enricher == nil {
		return &enrichment{tags: []string{}}, nil
	}

	embedding, err := s.enricher.Embed(ctx, ai.EmbeddingText(name, description))
	if err != nil {
		return nil, errcode.Internal("failed to generate embedding", err)
	}
	category, err := s.enricher.Categorize(ctx, name, description)
	if err != nil {
		return nil, errcode.Internal("failed to categorize", err)
	}
	tags, err := s.enricher.ExtractTags(ctx, name, description)
	if err != nil {
		return nil, errcode.Internal("failed to extract tags", err)
	}

	return &enrichment{
		category: &category,
		tags:     tags,
		vector:   embedding,
	}, nil
}

// indexUpsert writes a record to the vector index, best-effort.
func (s *Service) indexUpsert(ctx context.Context, id string, vec []float32, metadata vector.Metadata) {
	if s.index == nil || len(vec) == 0 {
		return
	}
	record := &vector.Record{ID: id, Vector: vec, Metadata: metadata}
	if err := s.index.Upsert(ctx, record); err != nil {
		slog.Warn("failed to upsert vector index record", "id", id, "error", err)
	}
}

// indexDelete removes a record from the vector index, best-effort.
func (s *Service) indexDelete(ctx context.Context, id string) {
	if s.index == nil {
		return
	}
	if err := s.index.Delete(ctx, id); err != nil {
		slog.Warn("failed to delete vector index record", "id", id, "error", err)
	}
}

// findOwnedHobby loads a hobby and enforces ownership. A hobby that is
// absent or owned by someone else yields the same not-found outcome.
func (s *Service) findOwnedHobby(ctx context.Context, user *store.User, hobbyUID string) (*store.Hobby, error) {
	hobby, err := s.store.GetHobby(ctx, &store.FindHobby{UID: &hobbyUID, UserID: &user.ID})
	if err != nil {
		return nil, errcode.Internal("failed to load hobby", err)
	}
	if hobby == nil {
		return nil, errcode.NotFound("hobby not found")
	}
	return hobby, nil
}

// findOwnedItem loads an item scoped under an owned hobby. Any break in
// the chain (hobby absent, not owned, item absent, item under another
// hobby) yields the same not-found outcome.
func (s *Service) findOwnedItem(ctx context.Context, user *store.User, hobbyUID, itemUID string) (*store.Hobby, *store.Item, error) {
	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.store.GetItem(ctx, &store.FindItem{UID: &itemUID, HobbyID: &hobby.ID})
	if err != nil {
		return nil, nil, errcode.Internal("failed to load item", err)
	}
	if item == nil {
		return nil, nil, errcode.NotFound("item not found")
	}
	return hobby, item, nil
}

// CreateHobby validates, enriches and persists a new hobby, then
// propagates its embedding to the vector index.
func (s *Service) CreateHobby(ctx context.Context, user *store.User, req *UpsertHobbyRequest) (*store.Hobby, error) {
	if req.Name == "" {
		return nil, errcode.InvalidArgument("name is required")
	}

	e, err := s.enrich(ctx, req.Name, req.Description, req.Category)
	if err != nil {
		return nil, err
	}

	hobby, err := s.store.CreateHobby(ctx, &store.Hobby{
		UID:         shortuuid.New(),
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    e.category,
		Tags:        e.tags,
	})
	if err != nil {
		return nil, errcode.Internal("failed to create hobby", err)
	}

	s.indexUpsert(ctx, hobby.UID, e.vector, hobbyMetadata(hobby))
	return hobby, nil
}

// UpdateHobby recomputes enrichment from the new name/description and
// persists the result. There is no diffing: every update is a full
// recompute.
func (s *Service) UpdateHobby(ctx context.Context, user *store.User, hobbyUID string, req *UpsertHobbyRequest) (*store.Hobby, error) {
	if req.Name == "" {
		return nil, errcode.InvalidArgument("name is required")
	}

	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return nil, err
	}

	e, err := s.enrich(ctx, req.Name, req.Description, req.Category)
	if err != nil {
		return nil, err
	}

	update := &store.UpdateHobby{
		ID:          hobby.ID,
		Name:        &req.Name,
		Description: &req.Description,
		Tags:        e.tags,
	}
	if e.category != nil {
		update.Category = e.category
	}

	updated, err := s.store.UpdateHobby(ctx, update)
	if err != nil {
		return nil, errcode.Internal("failed to update hobby", err)
	}

	s.indexUpsert(ctx, updated.UID, e.vector, hobbyMetadata(updated))
	return updated, nil
}

// DeleteHobby removes the hobby and all of its items, then cleans up
// their index records best-effort.
func (s *Service) DeleteHobby(ctx context.Context, user *store.User, hobbyUID string) error {
	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return err
	}

	// Collect item UIDs before the cascade removes them.
	items, err := s.store.ListItems(ctx, &store.FindItem{HobbyID: &hobby.ID})
	if err != nil {
		return errcode.Internal("failed to list items", err)
	}

	if err := s.store.DeleteHobby(ctx, &store.DeleteHobby{ID: hobby.ID}); err != nil {
		return errcode.Internal("failed to delete hobby", err)
	}

	s.indexDelete(ctx, hobby.UID)
	for _, item := range items {
		s.indexDelete(ctx, item.UID)
	}
	return nil
}

// ListHobbies returns the user's hobbies, newest first.
func (s *Service) ListHobbies(ctx context.Context, user *store.User) ([]*store.Hobby, error) {
	hobbies, err := s.store.ListHobbies(ctx, &store.FindHobby{UserID: &user.ID})
	if err != nil {
		return nil, errcode.Internal("failed to list hobbies", err)
	}
	return hobbies, nil
}

// resolveItemCategory applies the category resolution rule for items:
// an explicit caller category wins, otherwise the hobby's category is
// inherited, otherwise AI categorization decides.
func resolveItemCategory(manual string, hobby *store.Hobby) string {
	if manual != "" {
		return manual
	}
	if hobby.Category != nil {
		return *hobby.Category
	}
	return ""
}

// CreateItem validates, enriches and persists a new item under an owned
// hobby. The ownership check runs before any AI call.
func (s *Service) CreateItem(ctx context.Context, user *store.User, hobbyUID string, req *UpsertItemRequest) (*store.Item, error) {
	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, errcode.InvalidArgument("name is required")
	}

	e, err := s.enrich(ctx, req.Name, req.Description, resolveItemCategory(req.Category, hobby))
	if err != nil {
		return nil, err
	}

	item := &store.Item{
		UID:         shortuuid.New(),
		HobbyID:     hobby.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    e.category,
		Tags:        e.tags,
	}
	if req.ImageRef != "" {
		imageRef := req.ImageRef
		item.ImageRef = &imageRef
	}

	created, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return nil, errcode.Internal("failed to create item", err)
	}

	s.indexUpsert(ctx, created.UID, e.vector, itemMetadata(hobby, created))
	return created, nil
}

// UpdateItem recomputes enrichment from the new name/description and
// persists the result.
func (s *Service) UpdateItem(ctx context.Context, user *store.User, hobbyUID, itemUID string, req *UpsertItemRequest) (*store.Item, error) {
	hobby, item, err := s.findOwnedItem(ctx, user, hobbyUID, itemUID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, errcode.InvalidArgument("name is required")
	}

	e, err := s.enrich(ctx, req.Name, req.Description, resolveItemCategory(req.Category, hobby))
	if err != nil {
		return nil, err
	}

	update := &store.UpdateItem{
		ID:          item.ID,
		Name:        &req.Name,
		Description: &req.Description,
		Tags:        e.tags,
	}
	if e.category != nil {
		update.Category = e.category
	}
	if req.ImageRef != "" {
		imageRef := req.ImageRef
		update.ImageRef = &imageRef
	}

	updated, err := s.store.UpdateItem(ctx, update)
	if err != nil {
		return nil, errcode.Internal("failed to update item", err)
	}

	s.indexUpsert(ctx, updated.UID, e.vector, itemMetadata(hobby, updated))
	return updated, nil
}

// DeleteItem removes a single item and its index record.
func (s *Service) DeleteItem(ctx context.Context, user *store.User, hobbyUID, itemUID string) error {
	_, item, err := s.findOwnedItem(ctx, user, hobbyUID, itemUID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, &store.DeleteItem{ID: item.ID}); err != nil {
		return errcode.Internal("failed to delete item", err)
	}

	s.indexDelete(ctx, item.UID)
	return nil
}

// ListItems returns the items of an owned hobby, newest first.
func (s *Service) ListItems(ctx context.Context, user *store.User, hobbyUID string) ([]*store.Item, error) {
	hobby, err := s.findOwnedHobby(ctx, user, hobbyUID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, &store.FindItem{HobbyID: &hobby.ID})
	if err != nil {
		return nil, errcode.Internal("failed to list items", err)
	}
	return items, nil
}

func hobbyMetadata(hobby *store.Hobby) vector.Metadata {
	metadata := vector.Metadata{
		Kind:   vector.KindHobby,
		UserID: hobby.UserID,
		Name:   hobby.Name,
	}
	if hobby.Category != nil {
		metadata.Category = *hobby.Category
	}
	return metadata
}

func itemMetadata(hobby *store.Hobby, item *store.Item) vector.Metadata {
	metadata := vector.Metadata{
		Kind:     vector.KindItem,
		UserID:   hobby.UserID,
		HobbyUID: hobby.UID,
		Name:     item.Name,
	}
	if item.Category != nil {
		metadata.Category = *item.Category
	}
	return metadata
}
