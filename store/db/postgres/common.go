package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// placeholder returns a positional placeholder for PostgreSQL ($1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n positional placeholders for PostgreSQL.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// marshalTags serializes an ordered tag list into its JSONB column form.
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

// unmarshalTags parses the JSONB column back into an ordered tag list.
// The result is never nil.
func unmarshalTags(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	tags := []string{}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tags")
	}
	return tags, nil
}
