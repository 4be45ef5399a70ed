package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/serroba/url-shortener/internal/shortener"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS short_urls (
	code       TEXT     NOT NULL PRIMARY KEY,
	long_url   TEXT     NOT NULL,
	url_hash   TEXT     NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
)`

type shortURLRow struct {
	Code      string    `db:"code"`
	LongURL   string    `db:"long_url"`
	URLHash   string    `db:"url_hash"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *shortURLRow) toShortURL() *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:      shortener.Code(r.Code),
		LongURL:   r.LongURL,
		URLHash:   shortener.URLHash(r.URLHash),
		CreatedAt: r.CreatedAt,
	}
}

// SQLiteStore is a SQLite implementation of shortener.Repository.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens the SQLite database at path and creates the schema if needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an existing connection whose schema is already in place.
func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO short_urls (code, long_url, url_hash, created_at) VALUES (?, ?, ?, ?)`,
		string(shortURL.Code),
		shortURL.LongURL,
		string(shortURL.URLHash),
		shortURL.CreatedAt,
	)

	return translateSQLiteConstraint(err)
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return s.getOne(ctx, `SELECT code, long_url, url_hash, created_at FROM short_urls WHERE code = ?`, string(code))
}

func (s *SQLiteStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	return s.getOne(ctx, `SELECT code, long_url, url_hash, created_at FROM short_urls WHERE url_hash = ?`, string(hash))
}

func (s *SQLiteStore) CodeExists(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM short_urls WHERE code = ?)`, string(code))

	return exists, err
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (*shortener.ShortURL, error) {
	var row shortURLRow

	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return row.toShortURL(), nil
}

func translateSQLiteConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey:
		return shortener.ErrCodeExists
	case sqlite3.ErrConstraintUnique:
		// "UNIQUE constraint failed: short_urls.url_hash"
		if strings.Contains(sqliteErr.Error(), "url_hash") {
			return shortener.ErrURLExists
		}

		return shortener.ErrCodeExists
	default:
		return err
	}
}

var _ shortener.Repository = (*SQLiteStore)(nil)
