package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/store"
)

// seedHobby creates a hobby whose embedding is fixed by the test.
func seedHobby(t *testing.T, env *testEnv, user *store.User, name string, embedding []float32) *store.Hobby {
	t.Helper()
	env.enricher.embeddings[name] = embedding
	hobby, err := env.service.CreateHobby(context.Background(), user, &UpsertHobbyRequest{Name: name})
	require.NoError(t, err)
	return hobby
}

func TestSimilarHobbies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	anchor := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	near := seedHobby(t, env, alice, "Go", []float32{0.9, 0.1, 0})
	far := seedHobby(t, env, alice, "Baking", []float32{0, 0, 1})
	// Bob's hobby is closest of all but must never appear for Alice.
	seedHobby(t, env, bob, "Shogi", []float32{0.99, 0.01, 0})

	scored, err := env.service.SimilarHobbies(ctx, alice, anchor.UID)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	require.Equal(t, near.UID, scored[0].Hobby.UID)
	require.Equal(t, far.UID, scored[1].Hobby.UID)
	require.Greater(t, scored[0].Score, scored[1].Score)
	for _, s := range scored {
		require.NotEqual(t, anchor.UID, s.Hobby.UID)
	}
}

func TestSimilarHobbiesLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	anchor := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	for _, name := range []string{"Go", "Shogi", "Checkers", "Xiangqi", "Backgammon", "Othello", "Hive"} {
		seedHobby(t, env, alice, name, []float32{0.8, 0.2, 0})
	}

	scored, err := env.service.SimilarHobbies(ctx, alice, anchor.UID)
	require.NoError(t, err)
	require.Len(t, scored, similarLimit)
}

func TestSimilarHobbiesAnchorNotOwned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	anchor := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})

	_, err := env.service.SimilarHobbies(ctx, bob, anchor.UID)
	require.True(t, errcode.IsCode(err, errcode.CodeNotFound))
}

func TestSimilarHobbiesDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	anchor := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	seedHobby(t, env, alice, "Go", []float32{0.9, 0.1, 0})

	// Index outage degrades to empty, not an error.
	env.service.index = failingIndex{}
	scored, err := env.service.SimilarHobbies(ctx, alice, anchor.UID)
	require.NoError(t, err)
	require.Empty(t, scored)

	// No index configured at all behaves the same.
	env.service.index = nil
	scored, err = env.service.SimilarHobbies(ctx, alice, anchor.UID)
	require.NoError(t, err)
	require.Empty(t, scored)
}

func TestSimilarHobbiesMissingAnchorEmbedding(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	anchor := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	seedHobby(t, env, alice, "Go", []float32{0.9, 0.1, 0})

	require.NoError(t, env.index.Delete(ctx, anchor.UID))

	scored, err := env.service.SimilarHobbies(ctx, alice, anchor.UID)
	require.NoError(t, err)
	require.Empty(t, scored)
}

func TestRecommendationsExcludeOwnRecords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	bobHobby := seedHobby(t, env, bob, "Go", []float32{0.95, 0.05, 0})
	env.enricher.embeddings["Goban"] = []float32{0.9, 0.1, 0}
	bobItem, err := env.service.CreateItem(ctx, bob, bobHobby.UID, &UpsertItemRequest{Name: "Goban"})
	require.NoError(t, err)

	recs, err := env.service.Recommendations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		switch rec.Kind {
		case "hobby":
			require.Equal(t, bobHobby.UID, rec.Hobby.UID)
		case "item":
			require.Equal(t, bobItem.UID, rec.Item.UID)
		}
	}
}

func TestRecommendationsWithoutHobbies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	seedHobby(t, env, bob, "Go", []float32{1, 0, 0})

	recs, err := env.service.Recommendations(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestRecommendationsDegradeGracefully(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})

	env.service.index = failingIndex{}
	recs, err := env.service.Recommendations(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, recs)

	env.service.index = nil
	recs, err = env.service.Recommendations(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestReindexRebuildsMissingRecords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	hobby := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	env.enricher.embeddings["Clock"] = []float32{0.5, 0.5, 0}
	item, err := env.service.CreateItem(ctx, alice, hobby.UID, &UpsertItemRequest{Name: "Clock"})
	require.NoError(t, err)

	// Simulate index loss.
	require.NoError(t, env.index.Delete(ctx, hobby.UID))
	require.NoError(t, env.index.Delete(ctx, item.UID))

	count, err := env.service.Reindex(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	for _, uid := range []string{hobby.UID, item.UID} {
		record, err := env.index.Fetch(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, record)
	}
}

func TestRepairMissingOnlyBackfills(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	kept := seedHobby(t, env, alice, "Chess", []float32{1, 0, 0})
	lost := seedHobby(t, env, alice, "Go", []float32{0, 1, 0})
	require.NoError(t, env.index.Delete(ctx, lost.UID))

	// A later recompute would produce different vectors; present records
	// must keep the ones they already have.
	env.enricher.embeddings["Chess"] = []float32{0, 0, 1}

	repaired, err := env.service.RepairMissing(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repaired)

	record, err := env.index.Fetch(ctx, kept.UID)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0}, record.Vector)

	record, err = env.index.Fetch(ctx, lost.UID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, []float32{0, 1, 0}, record.Vector)
}

func TestReindexRequiresIndexAndEnricher(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.service.index = nil
	_, err := env.service.Reindex(ctx)
	require.True(t, errcode.IsCode(err, errcode.CodeUnavailable))

	env.service.index = env.index
	env.service.enricher = nil
	_, err = env.service.Reindex(ctx)
	require.True(t, errcode.IsCode(err, errcode.CodeUnavailable))
}
