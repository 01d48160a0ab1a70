package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisDispatcher публикует уведомления в канал Redis в формате JSON.
type RedisDispatcher struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

type envelope struct {
	Message
	SentAt int64 `json:"sentAt"`
}

func NewRedisDispatcher(ctx context.Context, addr, password string, db int, channel string) (*RedisDispatcher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	return &RedisDispatcher{client: client, channel: channel, now: time.Now}, nil
}

func (d *RedisDispatcher) Send(ctx context.Context, m Message) error {
	payload, err := encode(m, d.now())
	if err != nil {
		return err
	}
	if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		return errors.Wrap(err, "failed to publish notification")
	}
	return nil
}

func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}

func encode(m Message, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(envelope{Message: m, SentAt: now.Unix()})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal notification")
	}
	return payload, nil
}
