package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	Healthy   = "healthy"
	Unhealthy = "unhealthy"
	Disabled  = "disabled"
)

const pingTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts a redis client to the Checker interface.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	database Checker
	cache    Checker
}

// NewHandler creates a new health handler. A nil cache reports as disabled.
func NewHandler(database, cache Checker) *Handler {
	return &Handler{database: database, cache: cache}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status   string `json:"status"   enum:"ok,degraded"`
		Database string `json:"database" enum:"healthy,unhealthy"`
		Cache    string `json:"cache"    enum:"healthy,unhealthy,disabled"`
	}
}

// Check pings every dependency concurrently. It always answers 200;
// a failing dependency only degrades the status.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp := &Response{}
	resp.Body.Cache = Disabled

	var g errgroup.Group

	g.Go(func() error {
		resp.Body.Database = probe(ctx, h.database)

		return nil
	})

	if h.cache != nil {
		g.Go(func() error {
			resp.Body.Cache = probe(ctx, h.cache)

			return nil
		})
	}

	_ = g.Wait()

	resp.Body.Status = StatusOK
	if resp.Body.Database == Unhealthy || resp.Body.Cache == Unhealthy {
		resp.Body.Status = StatusDegraded
	}

	return resp, nil
}

func probe(ctx context.Context, c Checker) string {
	if err := c.Ping(ctx); err != nil {
		return Unhealthy
	}

	return Healthy
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, h.Check)
}
