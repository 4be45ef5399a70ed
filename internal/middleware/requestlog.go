package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/handlers"
	"go.uber.org/zap"
)

// RequestObserver records request latency.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// RequestLog logs every completed operation and reports its latency to observer.
// It must run after RequestMeta so the request id is available.
func RequestLog(logger *zap.Logger, observer RequestObserver) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		elapsed := time.Since(start)
		path := ctx.Operation().Path
		status := ctx.Status()

		observer.ObserveRequest(ctx.Method(), path, status, elapsed)

		meta := handlers.RequestMetaFromContext(ctx.Context())
		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", meta.RequestID),
			zap.String("client_ip", meta.ClientIP),
		}

		if status >= 500 {
			logger.Warn("request failed", fields...)

			return
		}

		logger.Info("request", fields...)
	}
}
