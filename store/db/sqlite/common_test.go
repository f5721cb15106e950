package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "?", placeholder(3))
	require.Equal(t, "?, ?, ?", placeholders(3))
}

func TestTagsRoundTrip(t *testing.T) {
	raw, err := marshalTags([]string{"vintage", "rare"})
	require.NoError(t, err)
	require.Equal(t, `["vintage","rare"]`, raw)

	tags, err := unmarshalTags(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"vintage", "rare"}, tags)
}

func TestTagsNeverNil(t *testing.T) {
	raw, err := marshalTags(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)

	tags, err := unmarshalTags("")
	require.NoError(t, err)
	require.NotNil(t, tags)
	require.Empty(t, tags)
}
