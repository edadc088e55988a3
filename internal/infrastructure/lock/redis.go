package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired is returned when a lock cannot be acquired before the deadline
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when releasing a lock owned by someone else
	ErrLockNotHeld = errors.New("lock not held")
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisConfig holds Redis connection settings for the locker
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisLocker serializes work per key across service instances using SET NX.
type RedisLocker struct {
	rdb       *redis.Client
	logger    *slog.Logger
	keyPrefix string
	ttl       time.Duration
	wait      time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder can
// block others; wait bounds how long WithLock retries before giving up.
func NewRedisLocker(rdb *redis.Client, logger *slog.Logger, keyPrefix string, ttl, wait time.Duration) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisLocker{
		rdb:       rdb,
		logger:    logger,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		wait:      wait,
	}
}

// WithLock runs fn while holding the lock for key.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := l.keyPrefix + key
	token, err := l.acquire(ctx, lockKey)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			l.logger.WarnContext(ctx, "Failed to release lock",
				slog.String("key", lockKey),
				slog.String("error", err.Error()),
			)
		}
	}()

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, lockKey string) (string, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)
	backoff := 10 * time.Millisecond

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("acquire lock %s: %w", lockKey, err)
		}
		if ok {
			l.logger.DebugContext(ctx, "Acquired lock", slog.String("key", lockKey))
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: %s", ErrLockNotAcquired, lockKey)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > 500*time.Millisecond {
				backoff = 500 * time.Millisecond
			}
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, lockKey, token string) error {
	result, err := releaseScript.Run(ctx, l.rdb, []string{lockKey}, token).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}
