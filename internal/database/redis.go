package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redis from a URL. Returns nil (not an error) when no
// URL is configured: redis is optional and only needed to fan events out
// across instances.
func NewRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// UserChannel is the pub/sub channel carrying push events for one user.
func UserChannel(userID string) string {
	return fmt.Sprintf("buzz:user:%s", userID)
}
