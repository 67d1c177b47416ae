package throttle

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/redis/go-redis/v9"
)

// Redis is a Counter shared by every server instance.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis counter on client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to the redis:// url and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", opts.Addr)
	}
	return client, nil
}

// Incr runs INCR and EXPIRE in one transaction. Keys carry their window
// bucket, so refreshing the expiry never extends a window.
func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "redis incr")
	}
	return incr.Val(), nil
}
