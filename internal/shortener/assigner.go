package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MaxAttempts is the number of candidate codes tried before writing the last one anyway.
const MaxAttempts = 5

// Recorder observes assignment outcomes.
type Recorder interface {
	URLShortened(created bool)
	CodeCollision()
	CollisionRetriesExhausted()
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) URLShortened(bool)          {}
func (NopRecorder) CodeCollision()             {}
func (NopRecorder) CollisionRetriesExhausted() {}

// Assigner returns the existing mapping for a long URL or allocates a new unique code.
type Assigner struct {
	store        Repository
	validator    *Validator
	generateCode CodeGenerator
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewAssigner creates a new short-code assigner.
func NewAssigner(
	store Repository,
	generator CodeGenerator,
	recorder Recorder,
	logger *zap.Logger,
) *Assigner {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Assigner{
		store:        store,
		validator:    NewValidator(),
		generateCode: generator,
		recorder:     recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// Shorten returns the mapping for longURL, creating it if none exists.
// The returned bool reports whether a new mapping was written.
//
// Errors wrap ErrInvalidInput or ErrStorage.
func (a *Assigner) Shorten(ctx context.Context, longURL string) (*ShortURL, bool, error) {
	if err := a.validator.Validate(longURL); err != nil {
		return nil, false, err
	}

	urlHash := HashURL(longURL)

	existing, err := a.store.GetByHash(ctx, urlHash)
	if err == nil {
		a.recorder.URLShortened(false)

		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("%w: lookup by url: %w", ErrStorage, err)
	}

	code, err := a.candidate(ctx)
	if err != nil {
		return nil, false, err
	}

	shortURL := &ShortURL{
		Code:      code,
		LongURL:   longURL,
		URLHash:   urlHash,
		CreatedAt: a.now().UTC(),
	}

	err = a.store.Save(ctx, shortURL)
	if err == nil {
		a.recorder.URLShortened(true)

		return shortURL, true, nil
	}

	if errors.Is(err, ErrURLExists) {
		// A concurrent request mapped the same URL first; its mapping wins.
		winner, getErr := a.store.GetByHash(ctx, urlHash)
		if getErr != nil {
			return nil, false, fmt.Errorf("%w: reload after url conflict: %w", ErrStorage, getErr)
		}

		a.recorder.URLShortened(false)

		return winner, false, nil
	}

	return nil, false, fmt.Errorf("%w: save %q: %w", ErrStorage, code, err)
}

// candidate draws codes until one is unused or MaxAttempts is reached.
// After exhausting attempts the last candidate is returned anyway and the
// store's uniqueness constraint decides.
func (a *Assigner) candidate(ctx context.Context) (Code, error) {
	var code Code

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code = Code(a.generateCode())

		exists, err := a.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: check code: %w", ErrStorage, err)
		}

		if !exists {
			return code, nil
		}

		a.recorder.CodeCollision()
		a.logger.Debug("short code collision",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	a.recorder.CollisionRetriesExhausted()
	a.logger.Warn("collision retries exhausted, writing last candidate",
		zap.String("code", string(code)),
		zap.Int("attempts", MaxAttempts),
	)

	return code, nil
}
