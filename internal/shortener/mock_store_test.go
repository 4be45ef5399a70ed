package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/url-shortener/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com/page"

// mockStore is a test double for shortener.Repository that can be configured to return errors.
type mockStore struct {
	getByHashErr    error
	getByHashResult *shortener.ShortURL
	getByCodeErr    error
	codeExistsErr   error
	saveErr         error

	// existing codes reported by CodeExists
	taken map[shortener.Code]bool

	saved         []*shortener.ShortURL
	hashLookups   int
	existsLookups int
}

func (m *mockStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = append(m.saved, shortURL)

	return nil
}

func (m *mockStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if m.getByCodeErr != nil {
		return nil, m.getByCodeErr
	}

	for _, s := range m.saved {
		if s.Code == code {
			return s, nil
		}
	}

	return nil, shortener.ErrNotFound
}

func (m *mockStore) GetByHash(_ context.Context, _ shortener.URLHash) (*shortener.ShortURL, error) {
	m.hashLookups++

	if m.getByHashResult != nil && m.hashLookups > 1 {
		return m.getByHashResult, nil
	}

	if m.getByHashErr != nil {
		return nil, m.getByHashErr
	}

	return nil, shortener.ErrNotFound
}

func (m *mockStore) CodeExists(_ context.Context, code shortener.Code) (bool, error) {
	m.existsLookups++

	if m.codeExistsErr != nil {
		return false, m.codeExistsErr
	}

	return m.taken[code], nil
}

// sequence returns a generator that yields codes in order, repeating the last one.
func sequence(codes ...string) shortener.CodeGenerator {
	i := 0

	return func() string {
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}

		return code
	}
}

type countingRecorder struct {
	created    int
	existing   int
	collisions int
	exhausted  int
}

func (r *countingRecorder) URLShortened(created bool) {
	if created {
		r.created++
	} else {
		r.existing++
	}
}

func (r *countingRecorder) CodeCollision()             { r.collisions++ }
func (r *countingRecorder) CollisionRetriesExhausted() { r.exhausted++ }
