package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisChannel is the pub/sub channel shared by API instances.
const RedisChannel = "parking:events"

// RedisPublisher fans events out to every API instance over pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: RedisChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe delivers events from the pub/sub channel until ctx is done.
// Malformed payloads are skipped.
func Subscribe(ctx context.Context, client *redis.Client, fn func(Event)) {
	sub := client.Subscribe(ctx, RedisChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Debug().Err(err).Msg("Skipping malformed event payload")
				continue
			}
			fn(e)
		}
	}
}
