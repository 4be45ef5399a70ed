package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type observation struct {
	method string
	path   string
	status int
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObserveRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.obs = append(r.obs, observation{method: method, path: path, status: status})
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &recordingObserver{}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(middleware.RequestLog(zap.New(core), rec))

	huma.Get(api, "/items/{id}", func(_ context.Context, _ *struct {
		ID string `path:"id"`
	}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	huma.Get(api, "/broken", func(context.Context, *struct{}) (*testOutput, error) {
		return nil, huma.Error500InternalServerError("Server error")
	})

	t.Run("logs and observes successful request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")

		router.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.FilterMessage("request").TakeAll()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, "/items/42", fields["path"])
		assert.Equal(t, "req-42", fields["request_id"])
		assert.EqualValues(t, http.StatusOK, fields["status"])

		rec.mu.Lock()
		defer rec.mu.Unlock()
		assert.Contains(t, rec.obs, observation{method: http.MethodGet, path: "/items/{id}", status: http.StatusOK})
	})

	t.Run("warns on server error", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

		entries := logs.FilterMessage("request failed").TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})
}
