package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		v, err := Generate(PrefixInvitation)
		require.NoError(t, err)
		assert.False(t, seen[v], "ID should be unique: %s", v)
		seen[v] = true
	}
	assert.Len(t, seen, 1000)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixInvitation, PrefixMessage, PrefixNotification} {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			parts := strings.SplitN(v, "-", 2)
			require.Len(t, parts, 2)
			assert.Equal(t, prefix, parts[0])
			assert.Len(t, parts[1], 21)
			assert.True(t, HasPrefix(v, prefix))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("msg-abc", PrefixMessage))
	assert.False(t, HasPrefix("msg-", PrefixMessage))
	assert.False(t, HasPrefix("inv-abc", PrefixMessage))
}
