package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeGenerator(t *testing.T) {
	gen, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	seen := make(map[string]struct{})

	for range 1000 {
		code := gen()

		require.Len(t, code, 8)

		for _, c := range code {
			assert.True(t, strings.ContainsRune(shortener.Alphabet, c), "unexpected rune %q in %q", c, code)
		}

		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 990)
}

func TestNewCodeGenerator_InvalidLength(t *testing.T) {
	_, err := shortener.NewCodeGenerator(0)

	assert.Error(t, err)
}

func TestHashURL(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, shortener.HashURL(testURL), shortener.HashURL(testURL))
	})

	t.Run("differs for byte-different URLs", func(t *testing.T) {
		assert.NotEqual(t, shortener.HashURL("https://example.com"), shortener.HashURL("https://example.com/"))
	})

	t.Run("is hex encoded sha256", func(t *testing.T) {
		assert.Len(t, string(shortener.HashURL(testURL)), 64)
	})
}
