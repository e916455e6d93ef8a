package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis and verifies the connection up front.
func NewClient(ctx context.Context, address string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		PoolSize: 100,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
