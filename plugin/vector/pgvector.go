package vector

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
)

// DefaultDimension matches text-embedding-3-small.
const DefaultDimension = 1536

// PGVectorIndex stores embeddings in PostgreSQL using the pgvector
// extension, with cosine distance for queries.
type PGVectorIndex struct {
	db  *sql.DB
	dim int
}

// NewPGVectorIndex creates the index over an existing PostgreSQL
// connection and ensures its schema.
func NewPGVectorIndex(ctx context.Context, db *sql.DB, dim int) (*PGVectorIndex, error) {
	if dim <= 0 {
		dim = DefaultDimension
	}
	idx := &PGVectorIndex{db: db, dim: dim}
	if err := idx.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (p *PGVectorIndex) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS embedding (
			id TEXT PRIMARY KEY,
			vec vector(` + strconv.Itoa(p.dim) + `) NOT NULL,
			kind TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			hobby_uid TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_embedding_user_id ON embedding (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure embedding schema")
		}
	}
	return nil
}

func (p *PGVectorIndex) Upsert(ctx context.Context, record *Record) error {
	stmt := `
		INSERT INTO embedding (id, vec, kind, user_id, hobby_uid, name, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			vec = EXCLUDED.vec,
			kind = EXCLUDED.kind,
			user_id = EXCLUDED.user_id,
			hobby_uid = EXCLUDED.hobby_uid,
			name = EXCLUDED.name,
			category = EXCLUDED.category`

	_, err := p.db.ExecContext(ctx, stmt,
		record.ID,
		pgvector.NewVector(record.Vector),
		record.Metadata.Kind,
		record.Metadata.UserID,
		record.Metadata.HobbyUID,
		record.Metadata.Name,
		record.Metadata.Category,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert embedding")
	}
	return nil
}

func (p *PGVectorIndex) Fetch(ctx context.Context, id string) (*Record, error) {
	stmt := `
		SELECT id, vec, kind, user_id, hobby_uid, name, category
		FROM embedding
		WHERE id = $1`

	var record Record
	var vec pgvector.Vector
	err := p.db.QueryRowContext(ctx, stmt, id).Scan(
		&record.ID,
		&vec,
		&record.Metadata.Kind,
		&record.Metadata.UserID,
		&record.Metadata.HobbyUID,
		&record.Metadata.Name,
		&record.Metadata.Category,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch embedding")
	}

	record.Vector = vec.Slice()
	return &record, nil
}

func (p *PGVectorIndex) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM embedding WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "failed to delete embedding")
	}
	return nil
}

func (p *PGVectorIndex) Query(ctx context.Context, vector []float32, limit int, filter *Filter) ([]Result, error) {
	where, args := []string{"1 = 1"}, []any{pgvector.NewVector(vector)}

	if filter != nil {
		if v := filter.UserID; v != nil {
			args = append(args, *v)
			where = append(where, "user_id = $"+strconv.Itoa(len(args)))
		}
		if v := filter.Kind; v != nil {
			args = append(args, *v)
			where = append(where, "kind = $"+strconv.Itoa(len(args)))
		}
	}

	args = append(args, limit)
	query := `
		SELECT id, kind, user_id, hobby_uid, name, category,
			1 - (vec <=> $1) AS score
		FROM embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY vec <=> $1
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query embeddings")
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ID,
			&r.Metadata.Kind,
			&r.Metadata.UserID,
			&r.Metadata.HobbyUID,
			&r.Metadata.Name,
			&r.Metadata.Category,
			&r.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan embedding result")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Ensure PGVectorIndex implements Index
var _ Index = (*PGVectorIndex)(nil)
