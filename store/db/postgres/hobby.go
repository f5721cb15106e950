package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/curiocodex/curiocodex/store"
)

func (d *DB) CreateHobby(ctx context.Context, create *store.Hobby) (*store.Hobby, error) {
	tags, err := marshalTags(create.Tags)
	if err != nil {
		return nil, err
	}

	fields := []string{"uid", "user_id", "name", "description", "tags"}
	args := []any{create.UID, create.UserID, create.Name, create.Description, tags}

	if create.Category != nil {
		fields = append(fields, "category")
		args = append(args, *create.Category)
	}

	stmt := `INSERT INTO hobby (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create hobby")
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}

	return create, nil
}

func (d *DB) ListHobbies(ctx context.Context, find *store.FindHobby) ([]*store.Hobby, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "hobby.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "hobby.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "hobby.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UIDs; len(v) > 0 {
		holders := make([]string, len(v))
		for i, uid := range v {
			holders[i] = placeholder(len(args) + 1)
			args = append(args, uid)
		}
		where = append(where, "hobby.uid IN ("+strings.Join(holders, ", ")+")")
	}

	query := `
		SELECT id, uid, user_id, name, description, category, tags, created_ts, updated_ts
		FROM hobby
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY hobby.created_ts DESC, hobby.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query hobbies")
	}
	defer rows.Close()

	list := make([]*store.Hobby, 0)
	for rows.Next() {
		var hobby store.Hobby
		var category sql.NullString
		var tags []byte

		if err := rows.Scan(
			&hobby.ID,
			&hobby.UID,
			&hobby.UserID,
			&hobby.Name,
			&hobby.Description,
			&category,
			&tags,
			&hobby.CreatedTs,
			&hobby.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan hobby")
		}

		if category.Valid {
			hobby.Category = &category.String
		}
		if hobby.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}

		list = append(list, &hobby)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateHobby(ctx context.Context, update *store.UpdateHobby) (*store.Hobby, error) {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if update.ClearCategory {
		set = append(set, "category = NULL")
	} else if v := update.Category; v != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, *v)
	}
	if update.Tags != nil {
		tags, err := marshalTags(update.Tags)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, tags)
	}

	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, updatedTs)

	args = append(args, update.ID)
	stmt := `UPDATE hobby SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to update hobby")
	}

	id := update.ID
	list, err := d.ListHobbies(ctx, &store.FindHobby{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Errorf("hobby %d not found after update", update.ID)
	}
	return list[0], nil
}

func (d *DB) DeleteHobby(ctx context.Context, delete *store.DeleteHobby) error {
	// Items cascade via the hobby_id foreign key.
	if _, err := d.db.ExecContext(ctx, "DELETE FROM hobby WHERE id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete hobby")
	}
	return nil
}
