package collection

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/server/ai"
	"github.com/curiocodex/curiocodex/store"
)

// reindexConcurrency bounds concurrent embedding calls during a repair
// pass, to stay inside provider rate limits.
const reindexConcurrency = 3

// Reindex walks every hobby and item and writes an index record for each
// one. Records are upserted unconditionally so a repair pass also heals
// stale vectors, not just missing ones. Individual record failures are
// logged and skipped; the pass reports how many records it wrote.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errcode.Unavailable("vector index is not configured")
	}
	if s.enricher == nil {
		return 0, errcode.Unavailable("AI enrichment is not configured")
	}

	hobbies, err := s.store.ListHobbies(ctx, &store.FindHobby{})
	if err != nil {
		return 0, errcode.Internal("failed to list hobbies", err)
	}

	var indexed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(reindexConcurrency)
	for _, hobby := range hobbies {
		eg.Go(func() error {
			if s.reindexRecord(egCtx, hobby.UID, hobby.Name, hobby.Description, hobbyMetadata(hobby)) {
				indexed.Add(1)
			}

			items, err := s.store.ListItems(egCtx, &store.FindItem{HobbyID: &hobby.ID})
			if err != nil {
				slog.Warn("failed to list items during reindex", "hobby", hobby.UID, "error", err)
				return nil
			}
			for _, item := range items {
				if s.reindexRecord(egCtx, item.UID, item.Name, item.Description, itemMetadata(hobby, item)) {
					indexed.Add(1)
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(indexed.Load()), errcode.Internal("reindex aborted", err)
	}
	return int(indexed.Load()), nil
}

// RepairMissing backfills index records that are absent, leaving present
// ones untouched. This is the cheap periodic variant of Reindex: it only
// pays the embedding cost for records the index lost.
func (s *Service) RepairMissing(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errcode.Unavailable("vector index is not configured")
	}
	if s.enricher == nil {
		return 0, errcode.Unavailable("AI enrichment is not configured")
	}

	hobbies, err := s.store.ListHobbies(ctx, &store.FindHobby{})
	if err != nil {
		return 0, errcode.Internal("failed to list hobbies", err)
	}

	var repaired atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(reindexConcurrency)
	for _, hobby := range hobbies {
		eg.Go(func() error {
			if missing, err := s.indexMissing(egCtx, hobby.UID); err == nil && missing {
				if s.reindexRecord(egCtx, hobby.UID, hobby.Name, hobby.Description, hobbyMetadata(hobby)) {
					repaired.Add(1)
				}
			}

			items, err := s.store.ListItems(egCtx, &store.FindItem{HobbyID: &hobby.ID})
			if err != nil {
				slog.Warn("failed to list items during repair", "hobby", hobby.UID, "error", err)
				return nil
			}
			for _, item := range items {
				if missing, err := s.indexMissing(egCtx, item.UID); err == nil && missing {
					if s.reindexRecord(egCtx, item.UID, item.Name, item.Description, itemMetadata(hobby, item)) {
						repaired.Add(1)
					}
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(repaired.Load()), errcode.Internal("repair aborted", err)
	}
	return int(repaired.Load()), nil
}

func (s *Service) indexMissing(ctx context.Context, id string) (bool, error) {
	record, err := s.index.Fetch(ctx, id)
	if err != nil {
		slog.Warn("failed to probe vector index record", "id", id, "error", err)
		return false, err
	}
	return record == nil, nil
}

// reindexRecord embeds one record and upserts it, reporting success.
func (s *Service) reindexRecord(ctx context.Context, id, name, description string, metadata vector.Metadata) bool {
	embedding, err := s.enricher.Embed(ctx, ai.EmbeddingText(name, description))
	if err != nil {
		slog.Warn("failed to embed during reindex", "id", id, "error", err)
		return false
	}
	if err := s.index.Upsert(ctx, &vector.Record{ID: id, Vector: embedding, Metadata: metadata}); err != nil {
		slog.Warn("failed to upsert during reindex", "id", id, "error", err)
		return false
	}
	return true
}
