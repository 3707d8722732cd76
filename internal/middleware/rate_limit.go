package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/deppfellow/bridge-api/internal/errs"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware enforces a per-client-IP request rate. Limits are
// shared across instances through Redis when it is configured, otherwise
// kept in process memory.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the rate limiting middleware, or a pass-through when
// server.rate_limit is zero. /status is never limited.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.Server
	if cfg.RateLimit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/status"
		},
		Store: r.store(cfg.RateLimit, cfg.RateBurst),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Could not identify client", false, nil, nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("client", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, slow down")
		},
	})
}

func (r *RateLimitMiddleware) store(limit float64, burst int) middleware.RateLimiterStore {
	if r.server.Redis != nil {
		return NewRedisRateLimiterStore(r.server.Redis, limit, burst, r.server.Logger)
	}

	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
}

// RecordRateLimitHit records a New Relic custom event for a denied request.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimiterStore is a fixed one-second window counter in Redis.
// A Redis failure lets the request through.
type RedisRateLimiterStore struct {
	client *redis.Client
	limit  int64
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

// NewRedisRateLimiterStore allows up to max(burst, ceil(limit)) requests
// per client per second.
func NewRedisRateLimiterStore(client *redis.Client, limit float64, burst int, logger *zerolog.Logger) *RedisRateLimiterStore {
	perWindow := int64(math.Ceil(limit))
	if int64(burst) > perWindow {
		perWindow = int64(burst)
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "rate_limiter").Logger()
	}

	return &RedisRateLimiterStore{
		client: client,
		limit:  perWindow,
		prefix: "bridgeapi:ratelimit",
		logger: l,
		now:    time.Now,
	}
}

func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("%s:%s:%d", s.prefix, identifier, s.now().Unix())

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return count.Val() <= s.limit, nil
}
