package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Report cache keys
const (
	SalesReportKey = "report:sales"
	SalesReportTTL = 30 * time.Second
)

var client *redis.Client

// Init connects the report cache. The server runs fine without it; callers
// must treat a nil client as "cache disabled".
func Init(host, port, password string) error {
	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetReport returns a cached report payload, "" on miss or disabled cache.
func GetReport(ctx context.Context, key string) string {
	if client == nil {
		return ""
	}
	payload, err := client.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return payload
}

// SetReport caches a report payload for the given TTL.
func SetReport(ctx context.Context, key, payload string, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, payload, ttl)
}

// InvalidateReport drops a cached report after a sale or reversal changes it.
func InvalidateReport(ctx context.Context, key string) {
	if client == nil {
		return
	}
	client.Del(ctx, key)
}
