package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
//
// Mappings are immutable, so a cached entry never goes stale; the TTL only
// bounds memory and applies to both the per-code hashes and the per-hash
// index keys. Negative results are never cached and CodeExists always asks
// the underlying store.
type RedisCacheRepository struct {
	store      shortener.Repository
	client     redis.UniversalClient
	prefix     string
	hashPrefix string
	ttl        time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client redis.UniversalClient, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:      store,
		client:     client,
		prefix:     "short_url:",
		hashPrefix: "short_url_hash:",
		ttl:        ttl,
	}
}

// Save stores a short URL in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := r.store.Save(ctx, shortURL); err != nil {
		return err
	}

	r.cacheURL(ctx, shortURL)

	return nil
}

// GetByCode retrieves a short URL by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	url, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

// GetByHash retrieves a short URL by its hash, checking cache first.
func (r *RedisCacheRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	code, err := r.client.Get(ctx, r.hashPrefix+string(hash)).Result()
	if err == nil {
		if url, err := r.getFromCache(ctx, shortener.Code(code)); err == nil {
			return url, nil
		}
	}

	url, err := r.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

// CodeExists delegates to the underlying store.
func (r *RedisCacheRepository) CodeExists(ctx context.Context, code shortener.Code) (bool, error) {
	return r.store.CodeExists(ctx, code)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortURL{
		Code:      shortener.Code(result["code"]),
		LongURL:   result["long_url"],
		URLHash:   shortener.URLHash(result["url_hash"]),
		CreatedAt: createdAt,
	}, nil
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(url.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"code":       string(url.Code),
		"long_url":   url.LongURL,
		"url_hash":   string(url.URLHash),
		"created_at": url.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// A zero TTL means the key does not expire.
	pipe.Set(ctx, r.hashPrefix+string(url.URLHash), string(url.Code), r.ttl)

	// Cache writes are best effort; the store stays the source of truth.
	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
