package publisher

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using a Redis stream. The
// notification layers (push/email/SMS/webhook) consume the stream; the
// core only appends.
type RedisPublisher struct {
	client *redis.Client
	ctx    context.Context
	stream string
	maxLen int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, maxLen int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client: client,
		ctx:    ctx,
		stream: stream,
		maxLen: int64(maxLen),
	}
}

// Publish appends an alert to the stream, keyed by retailer name.
func (p *RedisPublisher) Publish(retailerKey string, message []byte) error {
	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"retailer": retailerKey,
			"alert":    string(message),
		},
	}).Err()
}

// TrimStream trims the alert stream to the configured maximum length
func (p *RedisPublisher) TrimStream() error {
	return p.client.XTrimMaxLen(p.ctx, p.stream, p.maxLen).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
