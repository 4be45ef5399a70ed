package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Shortener assigns short codes to long URLs.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (*shortener.ShortURL, bool, error)
}

// Resolver resolves short codes to long URLs.
type Resolver interface {
	Resolve(ctx context.Context, code string) (longURL string, found bool, err error)
}

// RedirectRecorder observes redirect outcomes.
type RedirectRecorder interface {
	Redirect(result string)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener        Shortener
	resolver         Resolver
	baseURL          string
	publishShortened messaging.Publish[events.URLShortened]
	recorder         RedirectRecorder
	logger           *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	s Shortener,
	resolver Resolver,
	baseURL string,
	publishShortened messaging.Publish[events.URLShortened],
	recorder RedirectRecorder,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		shortener:        s,
		resolver:         resolver,
		baseURL:          strings.TrimRight(baseURL, "/"),
		publishShortened: publishShortened,
		recorder:         recorder,
		logger:           logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds per-request metadata used for logging and events.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) ShortenURL(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	meta := RequestMetaFromContext(ctx)

	longURL, ok := req.Body.LongURL.(string)
	if !ok && req.Body.LongURL != nil {
		return nil, huma.Error400BadRequest(shortener.MsgInvalidURL)
	}

	shortURL, created, err := h.shortener.Shorten(ctx, longURL)
	if err != nil {
		var validationErr *shortener.ValidationError
		if errors.As(err, &validationErr) {
			return nil, huma.Error400BadRequest(validationErr.Message)
		}

		h.logger.Error("failed to shorten url",
			zap.String("request_id", meta.RequestID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError(msgServerError)
	}

	if created {
		event := &events.URLShortened{
			Code:      string(shortURL.Code),
			LongURL:   shortURL.LongURL,
			CreatedAt: shortURL.CreatedAt,
			RequestID: meta.RequestID,
		}

		if err := h.publishShortened(ctx, event); err != nil {
			h.logger.Error("failed to publish url shortened event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}

	resp := &ShortenResponse{}
	resp.Body.ShortURL = h.baseURL + "/" + string(shortURL.Code)

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, found, err := h.resolver.Resolve(ctx, req.Code)
	if err != nil {
		h.recorder.Redirect(metrics.RedirectError)
		h.logger.Error("failed to resolve short code",
			zap.String("code", req.Code),
			zap.String("request_id", RequestMetaFromContext(ctx).RequestID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError(msgServerError)
	}

	if !found {
		h.recorder.Redirect(metrics.RedirectNotFound)

		return nil, huma.Error404NotFound(msgNotFound)
	}

	h.recorder.Redirect(metrics.RedirectFound)

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: longURL,
	}, nil
}
