package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/utils"
)

// BatchLock is an advisory lock around the monitoring batch. The engine
// itself assumes at most one batch run at a time; overlapping scheduler
// invocations are fenced off here rather than inside the batch loop.
type BatchLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
	Close() error
}

type batchLock struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

// releaseScript deletes the lock only if the caller still holds it, so a run
// that outlives the TTL cannot release a lock another run has since taken.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

func NewBatchLock(log *logger.Logger) (BatchLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := utils.GetEnvAsDuration("MONITOR_LOCK_TTL", 15*time.Minute, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &batchLock{
		log: log.With("client", "BatchLock"),
		rdb: rdb,
		key: "citewatch:monitoring:batch_lock",
		ttl: ttl,
	}, nil
}

func (l *batchLock) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()

	acquired, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx failed: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			l.log.Warn("Could not release batch lock", "error", err)
		}
	}
	return release, true, nil
}

func (l *batchLock) Close() error {
	return l.rdb.Close()
}
