package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisPingTimeout bounds the startup connectivity check so a wrong
// REDIS_URL fails the boot instead of hanging it.
const redisPingTimeout = 5 * time.Second

// NewRedis builds the client behind the refetch fanout channel and the DLQ.
// poolSize caps connections per instance; the pub/sub subscription holds one
// dedicated connection on top of the pool.
func NewRedis(redisURL string, poolSize int) (*redis.Client, error) {
	opts, err := redisOptions(redisURL, poolSize)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func redisOptions(redisURL string, poolSize int) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	return opts, nil
}
