package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type Options struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis returns nil, nil when Addr is empty: idempotency replay is then off.
func OpenRedis(ctx context.Context, o Options) (*redis.Client, error) {
	if o.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return client, nil
}
