package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotAcquired means another request held the professional's lock for the
// whole wait. Callers may still go ahead: the database re-check decides.
var ErrNotAcquired = errors.New("booking lock not acquired")

// Locker serialises booking attempts for one professional across API
// instances. It only narrows the race window; it is never the source of
// truth for conflicts.
type Locker interface {
	Acquire(ctx context.Context, professionalID uint) (release func(), err error)
}

// ======================================================
// NO-OP
// ======================================================

type Noop struct{}

func (Noop) Acquire(context.Context, uint) (func(), error) {
	return func() {}, nil
}

// ======================================================
// REDIS
// ======================================================

// releaseScript deletes the key only if it still carries our token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger zerolog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		logger: logger.With().Str("component", "booking_lock").Logger(),
	}
}

func Key(professionalID uint) string {
	return fmt.Sprintf("booking-lock:professional:%d", professionalID)
}

// Acquire polls SET NX PX until it wins, the ttl elapses or ctx is done.
func (l *Redis) Acquire(ctx context.Context, professionalID uint) (func(), error) {
	key := Key(professionalID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx %s: %w", key, err)
		}
		if ok {
			return func() {
				// The request context may already be cancelled here.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
					l.logger.Warn().Err(err).Str("key", key).Msg("release booking lock")
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

// New picks the Redis locker when a client is configured.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Locker {
	if client == nil {
		return Noop{}
	}
	return NewRedis(client, ttl, logger)
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
