package collection

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/store"
	teststore "github.com/curiocodex/curiocodex/store/test"
)

// fakeEnricher is a deterministic AI gateway for tests. Embeddings come
// from the embeddings map keyed by embedding text, falling back to a
// fixed vector so the index always has something to store.
type fakeEnricher struct {
	embeddings map[string][]float32
	category   string
	tags       []string

	embedErr      error
	categorizeErr error
	tagsErr       error

	embedCalls      int
	categorizeCalls int
}

func newFakeEnricher() *fakeEnricher {
	return &fakeEnricher{
		embeddings: map[string][]float32{},
		category:   "Gaming",
		tags:       []string{"fun"},
	}
}

func (f *fakeEnricher) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if v, ok := f.embeddings[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEnricher) Categorize(_ context.Context, _, _ string) (string, error) {
	f.categorizeCalls++
	if f.categorizeErr != nil {
		return "", f.categorizeErr
	}
	return f.category, nil
}

func (f *fakeEnricher) ExtractTags(_ context.Context, _, _ string) ([]string, error) {
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.tags, nil
}

// failingIndex fails every operation, to prove index outages never
// surface to callers of write paths.
type failingIndex struct{}

func (failingIndex) Upsert(context.Context, *vector.Record) error { return errors.New("index down") }
func (failingIndex) Fetch(context.Context, string) (*vector.Record, error) {
	return nil, errors.New("index down")
}
func (failingIndex) Delete(context.Context, string) error { return errors.New("index down") }
func (failingIndex) Query(context.Context, []float32, int, *vector.Filter) ([]vector.Result, error) {
	return nil, errors.New("index down")
}

type testEnv struct {
	service  *Service
	store    *store.Store
	index    *vector.MemoryIndex
	enricher *fakeEnricher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.New(teststore.NewMemoryDriver(), &profile.Profile{Mode: "demo"})
	index := vector.NewMemoryIndex()
	enricher := newFakeEnricher()
	return &testEnv{
		service:  NewService(st, enricher, index),
		store:    st,
		index:    index,
		enricher: enricher,
	}
}

func (env *testEnv) createUser(t *testing.T, username string) *store.User {
	t.Helper()
	user, err := env.store.CreateUser(context.Background(), &store.User{
		UID:          username + "-uid",
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func TestCreateHobby(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{
		Name:        "Chess",
		Description: "Weekend blitz games",
	})
	require.NoError(t, err)
	require.NotEmpty(t, hobby.UID)
	require.Equal(t, user.ID, hobby.UserID)
	require.NotNil(t, hobby.Category)
	require.Equal(t, "Gaming", *hobby.Category)
	require.Equal(t, []string{"fun"}, hobby.Tags)

	record, err := env.index.Fetch(ctx, hobby.UID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, vector.KindHobby, record.Metadata.Kind)
	require.Equal(t, user.ID, record.Metadata.UserID)
	require.Equal(t, "Chess", record.Metadata.Name)
}

func TestCreateHobbyManualCategory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{
		Name:     "Chess",
		Category: "Board Games",
	})
	require.NoError(t, err)
	require.Equal(t, "Board Games", *hobby.Category)
	// The override is stored verbatim and categorization never runs,
	// but tag extraction still does.
	require.Equal(t, 0, env.enricher.categorizeCalls)
	require.Equal(t, []string{"fun"}, hobby.Tags)
}

func TestCreateHobbyEmptyName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	_, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: ""})
	require.True(t, errcode.IsCode(err, errcode.CodeInvalidArgument))
	// Validation fails fast, before any AI call.
	require.Equal(t, 0, env.enricher.embedCalls)
}

func TestCreateHobbyEnrichmentFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	env.enricher.embedErr = errors.New("provider timeout")

	_, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Chess"})
	require.True(t, errcode.IsCode(err, errcode.CodeInternal))

	// The failed create leaves no relational record behind.
	hobbies, err := env.service.ListHobbies(ctx, user)
	require.NoError(t, err)
	require.Empty(t, hobbies)
}

func TestCreateHobbyIndexFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	env.service.index = failingIndex{}

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)
	require.NotNil(t, hobby)

	hobbies, err := env.service.ListHobbies(ctx, user)
	require.NoError(t, err)
	require.Len(t, hobbies, 1)
}

func TestUpdateHobbyRecomputes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	env.enricher.embeddings["Chess"] = []float32{1, 0, 0}
	env.enricher.embeddings["Go"] = []float32{0, 1, 0}

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)

	env.enricher.category = "Science & Tech"
	env.enricher.tags = []string{"strategy", "board"}
	updated, err := env.service.UpdateHobby(ctx, user, hobby.UID, &UpsertHobbyRequest{Name: "Go"})
	require.NoError(t, err)
	require.Equal(t, "Go", updated.Name)
	require.Equal(t, "Science & Tech", *updated.Category)
	require.Equal(t, []string{"strategy", "board"}, updated.Tags)

	record, err := env.index.Fetch(ctx, hobby.UID)
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1, 0}, record.Vector)
	require.Equal(t, "Go", record.Metadata.Name)
}

func TestUpdateHobbyNotOwned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	hobby, err := env.service.CreateHobby(ctx, alice, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)

	env.enricher.embedCalls = 0
	_, err = env.service.UpdateHobby(ctx, bob, hobby.UID, &UpsertHobbyRequest{Name: "Stolen"})
	require.True(t, errcode.IsCode(err, errcode.CodeNotFound))
	// Ownership is checked before any AI call.
	require.Equal(t, 0, env.enricher.embedCalls)
}

func TestDeleteHobbyCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)
	item, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{Name: "Tournament set"})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteHobby(ctx, user, hobby.UID))

	hobbies, err := env.service.ListHobbies(ctx, user)
	require.NoError(t, err)
	require.Empty(t, hobbies)

	for _, uid := range []string{hobby.UID, item.UID} {
		record, err := env.index.Fetch(ctx, uid)
		require.NoError(t, err)
		require.Nil(t, record)
	}
}

func TestCreateItemOwnershipCheckedFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	hobby, err := env.service.CreateHobby(ctx, alice, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)

	env.enricher.embedCalls = 0
	_, err = env.service.CreateItem(ctx, bob, hobby.UID, &UpsertItemRequest{Name: "Pawn"})
	require.True(t, errcode.IsCode(err, errcode.CodeNotFound))
	require.Equal(t, 0, env.enricher.embedCalls)
}

func TestItemCategoryResolution(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	env.enricher.category = "Collecting"
	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Stamps"})
	require.NoError(t, err)

	// No explicit category: the item inherits the hobby's category and
	// categorization is skipped.
	env.enricher.categorizeCalls = 0
	inherited, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{Name: "Penny Black"})
	require.NoError(t, err)
	require.Equal(t, "Collecting", *inherited.Category)
	require.Equal(t, 0, env.enricher.categorizeCalls)

	// Explicit category wins over inheritance.
	manual, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{
		Name:     "Blue Mauritius",
		Category: "Rare Finds",
	})
	require.NoError(t, err)
	require.Equal(t, "Rare Finds", *manual.Category)
}

func TestItemCategoryFallsBackToAI(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	// A hobby without a category forces AI categorization for its items.
	env.service.enricher = nil
	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Stamps"})
	require.NoError(t, err)
	require.Nil(t, hobby.Category)

	env.service.enricher = env.enricher
	env.enricher.category = "Collecting"
	item, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{Name: "Penny Black"})
	require.NoError(t, err)
	require.Equal(t, "Collecting", *item.Category)
	require.Equal(t, 1, env.enricher.categorizeCalls)
}

func TestUpdateItemRecomputes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Stamps"})
	require.NoError(t, err)
	item, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{Name: "Penny Black"})
	require.NoError(t, err)

	env.enricher.embeddings["Two Penny Blue"] = []float32{0, 0, 1}
	updated, err := env.service.UpdateItem(ctx, user, hobby.UID, item.UID, &UpsertItemRequest{Name: "Two Penny Blue"})
	require.NoError(t, err)
	require.Equal(t, "Two Penny Blue", updated.Name)

	record, err := env.index.Fetch(ctx, item.UID)
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0, 1}, record.Vector)
	require.Equal(t, hobby.UID, record.Metadata.HobbyUID)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	hobby, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Stamps"})
	require.NoError(t, err)
	item, err := env.service.CreateItem(ctx, user, hobby.UID, &UpsertItemRequest{Name: "Penny Black"})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteItem(ctx, user, hobby.UID, item.UID))

	items, err := env.service.ListItems(ctx, user, hobby.UID)
	require.NoError(t, err)
	require.Empty(t, items)

	record, err := env.index.Fetch(ctx, item.UID)
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestListHobbiesWithItems(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice")

	first, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Stamps"})
	require.NoError(t, err)
	second, err := env.service.CreateHobby(ctx, user, &UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)
	_, err = env.service.CreateItem(ctx, user, first.UID, &UpsertItemRequest{Name: "Penny Black"})
	require.NoError(t, err)

	list, err := env.service.ListHobbiesWithItems(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	require.Equal(t, second.UID, list[0].Hobby.UID)
	require.Empty(t, list[0].Items)
	require.Equal(t, first.UID, list[1].Hobby.UID)
	require.Len(t, list[1].Items, 1)
}
