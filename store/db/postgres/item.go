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

func (d *DB) CreateItem(ctx context.Context, create *store.Item) (*store.Item, error) {
	tags, err := marshalTags(create.Tags)
	if err != nil {
		return nil, err
	}

	fields := []string{"uid", "hobby_id", "name", "description", "tags"}
	args := []any{create.UID, create.HobbyID, create.Name, create.Description, tags}

	if create.Category != nil {
		fields = append(fields, "category")
		args = append(args, *create.Category)
	}
	if create.ImageRef != nil {
		fields = append(fields, "image_ref")
		args = append(args, *create.ImageRef)
	}

	stmt := `INSERT INTO item (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create item")
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}

	return create, nil
}

func (d *DB) ListItems(ctx context.Context, find *store.FindItem) ([]*store.Item, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "item.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "item.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.HobbyID; v != nil {
		where, args = append(where, "item.hobby_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UIDs; len(v) > 0 {
		holders := make([]string, len(v))
		for i, uid := range v {
			holders[i] = placeholder(len(args) + 1)
			args = append(args, uid)
		}
		where = append(where, "item.uid IN ("+strings.Join(holders, ", ")+")")
	}

	query := `
		SELECT id, uid, hobby_id, name, description, category, tags, image_ref, created_ts, updated_ts
		FROM item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY item.created_ts DESC, item.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query items")
	}
	defer rows.Close()

	list := make([]*store.Item, 0)
	for rows.Next() {
		var item store.Item
		var category, imageRef sql.NullString
		var tags []byte

		if err := rows.Scan(
			&item.ID,
			&item.UID,
			&item.HobbyID,
			&item.Name,
			&item.Description,
			&category,
			&tags,
			&imageRef,
			&item.CreatedTs,
			&item.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}

		if category.Valid {
			item.Category = &category.String
		}
		if imageRef.Valid {
			item.ImageRef = &imageRef.String
		}
		if item.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}

		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateItem(ctx context.Context, update *store.UpdateItem) (*store.Item, error) {
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
	if v := update.ImageRef; v != nil {
		set, args = append(set, "image_ref = "+placeholder(len(args)+1)), append(args, *v)
	}

	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, updatedTs)

	args = append(args, update.ID)
	stmt := `UPDATE item SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to update item")
	}

	id := update.ID
	list, err := d.ListItems(ctx, &store.FindItem{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Errorf("item %d not found after update", update.ID)
	}
	return list[0], nil
}

func (d *DB) DeleteItem(ctx context.Context, delete *store.DeleteItem) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM item WHERE id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete item")
	}
	return nil
}
