package sqlite

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// placeholder returns a placeholder for SQLite (uses ?)
func placeholder(int) string {
	return "?"
}

// placeholders returns n placeholders for SQLite
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// marshalTags serializes an ordered tag list into its JSON text column form.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal tags")
	}
	return string(raw), nil
}

// unmarshalTags parses the JSON text column back into an ordered tag list.
// The result is never nil.
func unmarshalTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	tags := []string{}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tags")
	}
	return tags, nil
}
