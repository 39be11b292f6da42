package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/promolink/promolink-backend/pkg/logger"
)

// PatternSubscriber is the slice of the Redis client the bridge needs.
type PatternSubscriber interface {
	PSubscribe(ctx context.Context, patterns ...string) (*goredis.PubSub, error)
}

// Bridge forwards notification payloads published on Redis channels
// (`<prefix>:<userID>`) to this instance's websocket hub. Each API
// instance runs one bridge; users connected elsewhere are served by
// their own instance's subscription.
type Bridge struct {
	hub    *Hub
	redis  PatternSubscriber
	prefix string
	logg   *logger.Logger
}

func NewBridge(hub *Hub, redis PatternSubscriber, channelPrefix string, logg *logger.Logger) *Bridge {
	return &Bridge{
		hub:    hub,
		redis:  redis,
		prefix: strings.TrimSuffix(channelPrefix, ":"),
		logg:   logg,
	}
}

// Run blocks consuming the pattern subscription until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.redis.PSubscribe(ctx, b.prefix+":*")
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (b *Bridge) deliver(ctx context.Context, channel string, payload []byte) {
	userID, err := b.userIDFromChannel(channel)
	if err != nil {
		if b.logg != nil {
			b.logg.Warn(b.logg.WithField(ctx, "channel", channel), "dropping realtime message with bad channel")
		}
		return
	}

	var data json.RawMessage
	if err := json.Unmarshal(payload, &data); err != nil {
		if b.logg != nil {
			b.logg.Warn(b.logg.WithField(ctx, "channel", channel), "dropping malformed realtime payload")
		}
		return
	}

	b.hub.Send(ctx, userID, Message{Event: EventNotification, Data: data})
}

func (b *Bridge) userIDFromChannel(channel string) (uuid.UUID, error) {
	suffix := strings.TrimPrefix(channel, b.prefix+":")
	return uuid.Parse(suffix)
}
