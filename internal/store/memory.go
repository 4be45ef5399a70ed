package store

import (
	"context"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	urls   map[shortener.Code]*shortener.ShortURL
	hashes map[shortener.URLHash]shortener.Code
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:   make(map[shortener.Code]*shortener.ShortURL),
		hashes: make(map[shortener.URLHash]shortener.Code),
	}
}

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[shortURL.Code]; ok {
		return shortener.ErrCodeExists
	}

	if _, ok := m.hashes[shortURL.URLHash]; ok {
		return shortener.ErrURLExists
	}

	stored := *shortURL
	m.urls[shortURL.Code] = &stored
	m.hashes[shortURL.URLHash] = shortURL.Code

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shortURL, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *shortURL

	return &found, nil
}

func (m *MemoryStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	m.mu.RLock()
	code, ok := m.hashes[hash]
	m.mu.RUnlock()

	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.GetByCode(ctx, code)
}

func (m *MemoryStore) CodeExists(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.urls[code]

	return ok, nil
}

// Ping always succeeds for MemoryStore.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Shutdown is a no-op for MemoryStore.
func (m *MemoryStore) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*MemoryStore)(nil)
