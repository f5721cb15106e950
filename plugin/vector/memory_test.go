package vector

import (
	"context"
	"testing"
)

func seedIndex(t *testing.T, idx *MemoryIndex) {
	t.Helper()
	ctx := context.Background()

	records := []*Record{
		{
			ID:     "hobby-001",
			Vector: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
			Metadata: Metadata{
				Kind:     KindHobby,
				UserID:   1,
				Name:     "Birdwatching",
				Category: "Outdoors",
			},
		},
		{
			ID:     "hobby-002",
			Vector: []float32{0.15, 0.25, 0.35, 0.45, 0.55, 0.65, 0.75, 0.85},
			Metadata: Metadata{
				Kind:     KindHobby,
				UserID:   1,
				Name:     "Hiking",
				Category: "Outdoors",
			},
		},
		{
			ID:     "hobby-003",
			Vector: []float32{0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1},
			Metadata: Metadata{
				Kind:     KindHobby,
				UserID:   2,
				Name:     "Chess",
				Category: "Gaming",
			},
		},
		{
			ID:     "item-001",
			Vector: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.9},
			Metadata: Metadata{
				Kind:     KindItem,
				UserID:   1,
				HobbyUID: "hobby-001",
				Name:     "Binoculars",
				Category: "Outdoors",
			},
		},
	}
	for _, r := range records {
		if err := idx.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
}

func TestMemoryIndexContract(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	t.Run("Fetch_ReturnsStoredRecord", func(t *testing.T) {
		record, err := idx.Fetch(ctx, "hobby-001")
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if record == nil {
			t.Fatal("expected record")
		}
		if record.Metadata.Name != "Birdwatching" {
			t.Errorf("unexpected name %q", record.Metadata.Name)
		}
	})

	t.Run("Fetch_MissingReturnsNil", func(t *testing.T) {
		record, err := idx.Fetch(ctx, "nope")
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if record != nil {
			t.Error("expected nil for missing id")
		}
	})

	t.Run("Upsert_OverwritesExisting", func(t *testing.T) {
		err := idx.Upsert(ctx, &Record{
			ID:     "hobby-001",
			Vector: []float32{1, 0, 0, 0, 0, 0, 0, 0},
			Metadata: Metadata{
				Kind:   KindHobby,
				UserID: 1,
				Name:   "Birdwatching (updated)",
			},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		record, _ := idx.Fetch(ctx, "hobby-001")
		if record.Metadata.Name != "Birdwatching (updated)" {
			t.Error("upsert should overwrite the record")
		}
		// restore
		seedIndex(t, idx)
	})

	t.Run("Query_ReturnsSortedResults", func(t *testing.T) {
		results, err := idx.Query(ctx, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, 10, nil)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) == 0 {
			t.Fatal("expected results")
		}
		for i := 1; i < len(results); i++ {
			if results[i].Score > results[i-1].Score {
				t.Error("results should be sorted by score descending")
			}
		}
		if results[0].ID != "hobby-001" {
			t.Errorf("expected exact match first, got %s", results[0].ID)
		}
	})

	t.Run("Query_RespectsLimit", func(t *testing.T) {
		results, err := idx.Query(ctx, []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 2, nil)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) > 2 {
			t.Errorf("expected at most 2 results, got %d", len(results))
		}
	})

	t.Run("Query_AppliesUserFilter", func(t *testing.T) {
		userID := int32(1)
		results, err := idx.Query(ctx, []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 10, &Filter{UserID: &userID})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		for _, r := range results {
			if r.Metadata.UserID != 1 {
				t.Errorf("filter not applied, got user_id %d", r.Metadata.UserID)
			}
		}
	})

	t.Run("Query_AppliesKindFilter", func(t *testing.T) {
		kind := KindItem
		results, err := idx.Query(ctx, []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 10, &Filter{Kind: &kind})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 item result, got %d", len(results))
		}
		if results[0].ID != "item-001" {
			t.Errorf("unexpected result %s", results[0].ID)
		}
	})

	t.Run("Query_ScoresInRange", func(t *testing.T) {
		results, err := idx.Query(ctx, []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 10, nil)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		for _, r := range results {
			if r.Score < 0 || r.Score > 1 {
				t.Errorf("score out of range [0,1]: %f", r.Score)
			}
		}
	})

	t.Run("Delete_RemovesRecord", func(t *testing.T) {
		if err := idx.Delete(ctx, "hobby-003"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		record, _ := idx.Fetch(ctx, "hobby-003")
		if record != nil {
			t.Error("expected record to be gone")
		}
		// Deleting again is not an error.
		if err := idx.Delete(ctx, "hobby-003"); err != nil {
			t.Errorf("repeat delete should succeed: %v", err)
		}
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamped to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.expected; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}
