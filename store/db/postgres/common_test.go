package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "$1", placeholder(1))
	require.Equal(t, "$7", placeholder(7))
	require.Equal(t, "$1, $2, $3", placeholders(3))
}

func TestTagsRoundTrip(t *testing.T) {
	raw, err := marshalTags([]string{"vintage", "rare"})
	require.NoError(t, err)

	tags, err := unmarshalTags([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, []string{"vintage", "rare"}, tags)

	tags, err = unmarshalTags(nil)
	require.NoError(t, err)
	require.NotNil(t, tags)
	require.Empty(t, tags)
}
