package shortener

import "context"

// Repository defines the interface for mapping storage operations.
//
// Implementations must enforce uniqueness of both the code and the URL hash
// atomically, returning ErrCodeExists or ErrURLExists on violation.
type Repository interface {
	Save(ctx context.Context, shortURL *ShortURL) error
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)
	GetByHash(ctx context.Context, hash URLHash) (*ShortURL, error)
	CodeExists(ctx context.Context, code Code) (bool, error)
}
