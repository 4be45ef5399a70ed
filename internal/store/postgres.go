package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

const (
	uniqueViolationCode = "23505"

	constraintCode    = "short_urls_pkey"
	constraintURLHash = "short_urls_url_hash_key"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (code, long_url, url_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		string(shortURL.Code),
		shortURL.LongURL,
		string(shortURL.URLHash),
		shortURL.CreatedAt,
	)

	return translateUniqueViolation(err)
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT code, long_url, url_hash, created_at
		FROM short_urls
		WHERE code = $1
	`

	return p.getOne(ctx, query, string(code))
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	query := `
		SELECT code, long_url, url_hash, created_at
		FROM short_urls
		WHERE url_hash = $1
	`

	return p.getOne(ctx, query, string(hash))
}

func (p *PostgresStore) CodeExists(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_urls WHERE code = $1)`,
		string(code),
	).Scan(&exists)

	return exists, err
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func (p *PostgresStore) getOne(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	var url shortener.ShortURL

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&url.Code,
		&url.LongURL,
		&url.URLHash,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &url, nil
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintURLHash:
		return shortener.ErrURLExists
	case constraintCode:
		return shortener.ErrCodeExists
	default:
		return err
	}
}

var _ shortener.Repository = (*PostgresStore)(nil)
