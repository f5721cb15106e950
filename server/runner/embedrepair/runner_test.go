package embedrepair

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/server/service/collection"
	"github.com/curiocodex/curiocodex/store"
	teststore "github.com/curiocodex/curiocodex/store/test"
)

type stubEnricher struct{}

func (stubEnricher) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (stubEnricher) Categorize(context.Context, string, string) (string, error) {
	return "Gaming", nil
}
func (stubEnricher) ExtractTags(context.Context, string, string) ([]string, error) {
	return []string{}, nil
}

func TestRunOnceBackfills(t *testing.T) {
	ctx := context.Background()
	st := store.New(teststore.NewMemoryDriver(), &profile.Profile{Mode: "demo"})
	index := vector.NewMemoryIndex()
	service := collection.NewService(st, stubEnricher{}, index)

	user, err := st.CreateUser(ctx, &store.User{
		UID:      "alice-uid",
		Email:    "alice@example.com",
		Username: "alice",
	})
	require.NoError(t, err)
	hobby, err := service.CreateHobby(ctx, user, &collection.UpsertHobbyRequest{Name: "Chess"})
	require.NoError(t, err)
	require.NoError(t, index.Delete(ctx, hobby.UID))

	NewRunner(service).RunOnce(ctx)

	record, err := index.Fetch(ctx, hobby.UID)
	require.NoError(t, err)
	require.NotNil(t, record)
}
