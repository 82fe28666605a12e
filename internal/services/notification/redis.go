package notification

import (
	"context"
	"fmt"

	"ledgerpay/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher sends events over Redis pub/sub.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = TransactionEventsChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	payload, err := NewTransactionEvent(tx).Marshal()
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close is a no-op; the Redis client is shared with the cache and closed by its owner.
func (p *RedisPublisher) Close() error { return nil }
