package redisc

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const FeedChannel = "devconnector:feed"

// FeedBroker relays encoded feed events between server instances.
type FeedBroker struct {
	client  *redis.Client
	channel string
}

func NewFeedBroker(client *redis.Client) *FeedBroker {
	return &FeedBroker{client: client, channel: FeedChannel}
}

func (b *FeedBroker) Publish(ctx context.Context, data []byte) error {
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Subscribe hands every message on the feed channel to deliver until ctx is
// done.
func (b *FeedBroker) Subscribe(ctx context.Context, deliver func(ctx context.Context, data []byte) error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := deliver(ctx, []byte(msg.Payload)); err != nil {
				slog.Warn("failed to deliver feed message", "error", err)
				continue
			}
			slog.Debug("feed message relayed", "bytes", len(msg.Payload))
		}
	}
}
