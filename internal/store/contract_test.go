package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShortURL(code, longURL string) *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:      shortener.Code(code),
		LongURL:   longURL,
		URLHash:   shortener.HashURL(longURL),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// runRepositoryContract exercises the behaviour every shortener.Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("save and get by code", func(t *testing.T) {
		repo := newRepo(t)
		shortURL := newShortURL("code0001", "https://example.com/one")

		require.NoError(t, repo.Save(ctx, shortURL))

		got, err := repo.GetByCode(ctx, shortURL.Code)
		require.NoError(t, err)
		assert.Equal(t, shortURL.Code, got.Code)
		assert.Equal(t, shortURL.LongURL, got.LongURL)
		assert.Equal(t, shortURL.URLHash, got.URLHash)
		assert.True(t, shortURL.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", shortURL.CreatedAt, got.CreatedAt)
	})

	t.Run("save and get by hash", func(t *testing.T) {
		repo := newRepo(t)
		shortURL := newShortURL("code0002", "https://example.com/two")

		require.NoError(t, repo.Save(ctx, shortURL))

		got, err := repo.GetByHash(ctx, shortURL.URLHash)
		require.NoError(t, err)
		assert.Equal(t, shortURL.Code, got.Code)
		assert.Equal(t, shortURL.LongURL, got.LongURL)
	})

	t.Run("code exists", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newShortURL("code0003", "https://example.com/three")))

		exists, err := repo.CodeExists(ctx, "code0003")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.CodeExists(ctx, "missing0")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newShortURL("dupcode0", "https://example.com/first")))

		err := repo.Save(ctx, newShortURL("dupcode0", "https://example.com/second"))
		require.ErrorIs(t, err, shortener.ErrCodeExists)

		got, err := repo.GetByCode(ctx, "dupcode0")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/first", got.LongURL)
	})

	t.Run("duplicate long url is rejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newShortURL("first000", "https://example.com/same")))

		err := repo.Save(ctx, newShortURL("second00", "https://example.com/same"))
		require.ErrorIs(t, err, shortener.ErrURLExists)

		_, err = repo.GetByCode(ctx, "second00")
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.GetByCode(ctx, "nonexist")

		assert.Nil(t, got)
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("get by hash non-existent returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.GetByHash(ctx, shortener.HashURL("https://nowhere.example.com"))

		assert.Nil(t, got)
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
