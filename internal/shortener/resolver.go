package shortener

import (
	"context"
	"errors"
	"fmt"
)

// Resolver looks up long URLs by short code.
type Resolver struct {
	store Repository
}

// NewResolver creates a new code resolver.
func NewResolver(store Repository) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the long URL stored under code.
// An unknown code is reported with found=false and a nil error.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, bool, error) {
	shortURL, err := r.store.GetByCode(ctx, Code(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%w: resolve %q: %w", ErrStorage, code, err)
	}

	return shortURL.LongURL, true, nil
}
