package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ middleware.RateLimiterStore = (*RateLimitStore)(nil)

// RateLimitStore is a fixed-window request counter shared by every replica.
// Key format: ratelimit:<name>:<identifier>:<window_index>
type RateLimitStore struct {
	client  *redis.Client
	name    string
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRateLimitStore allows limit requests per identifier in each window.
func NewRateLimitStore(client *redis.Client, name string, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{
		client:  client,
		name:    name,
		limit:   int64(limit),
		window:  window,
		timeout: defaultTimeout,
		now:     time.Now,
		log:     log,
	}
}

// Allow counts one request for identifier. When Redis cannot be reached the
// request is let through and the error returned for logging.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier, s.now())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("limiter", s.name).Msg("rate limit store unavailable, allowing request")
		return true, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.name, identifier, now.UnixNano()/int64(s.window))
}
