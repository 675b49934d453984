package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "realtime:"

// RedisBroker fans events out through Redis pub/sub so every server
// instance delivers to its own sessions.
type RedisBroker struct {
	redis  *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewRedisBroker(redisClient *redis.Client, hub *Hub, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{
		redis:  redisClient,
		hub:    hub,
		logger: logger,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, evt Event) error {
	frame, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, channelPrefix+channel, frame).Err()
}

// Listen relays published frames to the local hub until ctx is done.
func (b *RedisBroker) Listen(ctx context.Context) error {
	pubsub := b.redis.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	b.logger.Info("realtime broker subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			room := strings.TrimPrefix(msg.Channel, channelPrefix)
			b.hub.Deliver(room, []byte(msg.Payload))
		}
	}
}
