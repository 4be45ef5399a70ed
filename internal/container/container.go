package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

const (
	apiTitle   = "URL Shortener"
	apiVersion = "1.0.0"

	// auditConsumerGroup is the Redis streams consumer group of the audit consumer.
	auditConsumerGroup = "audit"

	startupTimeout = 10 * time.Second
)

// Redis holds the optional Redis client. A nil Client means Redis is disabled.
type Redis struct {
	Client redis.UniversalClient
}

// Enabled reports whether a Redis address was configured.
func (r *Redis) Enabled() bool {
	return r.Client != nil
}

// Shutdown closes the client.
func (r *Redis) Shutdown() error {
	if r.Client == nil {
		return nil
	}

	return r.Client.Close()
}

// LoggerPackage provides the zap logger selected by Options.LogFormat.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.LogFormat {
		case "json":
			return zap.NewProduction()
		case "console", "":
			return zap.NewDevelopment()
		default:
			return nil, fmt.Errorf("unknown log format %q", opts.LogFormat)
		}
	})
}

// StorePackage provides the mapping store named by Options.DatabaseURL.
// Migration and connectivity failures are logged; the service still starts
// and /health reports the database as unhealthy.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (store.Backend, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		kind, backend, err := store.Open(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}

		logger = logger.With(zap.String("store", string(kind)))

		if kind == store.KindPostgres && opts.Migrate {
			if err := store.RunMigrations(opts.DatabaseURL); err != nil {
				logger.Error("database migration failed", zap.Error(err))
			}
		}

		if err := backend.Ping(ctx); err != nil {
			logger.Error("database unreachable", zap.Error(err))
		} else {
			logger.Info("database connected")
		}

		return backend, nil
	})
}

// RedisPackage provides the optional Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return &Redis{}, nil
		}

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// RepositoryPackage provides the repository used by the shortener, fronted by
// the Redis cache when Redis is enabled.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		backend := do.MustInvoke[store.Backend](i)
		rdb := do.MustInvoke[*Redis](i)

		if !rdb.Enabled() {
			return backend, nil
		}

		ttl, err := opts.CacheDuration()
		if err != nil {
			return nil, err
		}

		return store.NewRedisCacheRepository(backend, rdb.Client, ttl), nil
	})
}

// MetricsPackage provides the Prometheus metrics.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// PublisherGroupPackage provides the event publisher and the typed publish
// function for created mappings. Without Redis, events are discarded.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		rdb := do.MustInvoke[*Redis](i)
		if !rdb.Enabled() {
			return messaging.NewPublisherGroup(nil), nil
		}

		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     rdb.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLoggerAdapter(logger.Named("watermill")))
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[events.URLShortened], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)
		if group.Publisher() == nil {
			return messaging.NoopPublish[events.URLShortened](), nil
		}

		return messaging.NewPublishFunc[events.URLShortened](group.Publisher(), events.TopicURLShortened), nil
	})
}

// ShortenerPackage provides the assigner and resolver.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Assigner, error) {
		generator, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewAssigner(
			do.MustInvoke[shortener.Repository](i),
			generator,
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		return shortener.NewResolver(do.MustInvoke[shortener.Repository](i)), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		router := chi.NewMux()
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{"Location", middleware.RequestIDHeader},
			MaxAge:         300,
		}))

		if opts.ServeStatic {
			router.Use(middleware.Static(opts.StaticDir))
		}

		router.Handle("/metrics", m.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		backend := do.MustInvoke[store.Backend](i)
		rdb := do.MustInvoke[*Redis](i)

		api := humachi.New(router, handlers.NewAPIConfig(apiTitle, apiVersion))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RequestLog(logger.Named("http"), m))

		var cacheChecker health.Checker
		if rdb.Enabled() {
			cacheChecker = health.NewRedisChecker(rdb.Client)
		}

		health.RegisterRoutes(api, health.NewHandler(backend, cacheChecker))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Assigner](i),
			do.MustInvoke[*shortener.Resolver](i),
			opts.ResolvedBaseURL(),
			do.MustInvoke[messaging.Publish[events.URLShortened]](i),
			m,
			logger,
		)
		handlers.RegisterRoutes(api, urlHandler)

		return api, nil
	})
}

// ConsumerGroupPackage provides the audit consumer group reading url.shortened
// events from Redis streams. Redis must be enabled.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		rdb := do.MustInvoke[*Redis](i)
		if !rdb.Enabled() {
			return nil, fmt.Errorf("consumer requires a redis address")
		}

		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: auditConsumerGroup,
		}, messaging.NewZapLoggerAdapter(logger.Named("watermill")))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(events.NewAuditConsumer(subscriber, events.NewAuditLog(logger), logger))

		return group, nil
	})
}
