package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_SaltVaries(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword(first, "password"))
	assert.True(t, CheckPassword(second, "password"))
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("password")
	require.NoError(t, err)

	assert.False(t, CheckPassword(h, "not-the-password"))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not a hash", hash: "plainly-not-bcrypt"},
		{name: "truncated", hash: "$2a$10$abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.False(t, CheckPassword(tt.hash, "password"))
		})
	}
}
