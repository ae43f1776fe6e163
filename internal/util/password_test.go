package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		pw, err := GeneratePassword(16)
		require.NoError(t, err)
		assert.Len(t, pw, 16)
	})

	t.Run("Generate alphabet characters only", func(t *testing.T) {
		pw, err := GeneratePassword(64)
		require.NoError(t, err)

		for _, c := range pw {
			assert.True(t, strings.ContainsRune(passwordAlphabet, c),
				"Character '%c' is not in the password alphabet", c)
		}
	})

	t.Run("Generate unique values", func(t *testing.T) {
		pw1, err := GeneratePassword(16)
		require.NoError(t, err)
		pw2, err := GeneratePassword(16)
		require.NoError(t, err)
		assert.NotEqual(t, pw1, pw2)
	})

	t.Run("Reject short length", func(t *testing.T) {
		_, err := GeneratePassword(MinPasswordLength - 1)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}
