package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
}

// Publisher fans push messages out over Redis so every API replica can reach
// the user's websocket. Delivery is best effort: failures are logged and
// never returned to the business flow that produced them.
type Publisher struct {
	redis   redisPublisher
	prefix  string
	timeout time.Duration
	logg    *logger.Logger
}

func NewPublisher(client redisPublisher, cfg config.PushConfig, logg *logger.Logger) *Publisher {
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = "push"
	}
	return &Publisher{redis: client, prefix: prefix, timeout: cfg.Timeout, logg: logg}
}

// Channel returns the Redis channel for the message.
func (p *Publisher) Channel(msg Message) string {
	return p.prefix + ":" + msg.Topic()
}

// PublishAll sends every message, bounded by the configured timeout each.
// Call it after the owning transaction has committed.
func (p *Publisher) PublishAll(ctx context.Context, msgs []Message) {
	if p == nil || p.redis == nil {
		return
	}
	for _, msg := range msgs {
		p.publish(ctx, msg)
	}
}

func (p *Publisher) publish(ctx context.Context, msg Message) {
	channel := p.Channel(msg)
	body, err := json.Marshal(msg.Payload)
	if err != nil {
		p.logError(ctx, channel, "push payload encode failed", err)
		return
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	receivers, err := p.redis.Publish(ctx, channel, body)
	if err != nil {
		p.logError(ctx, channel, "push publish failed", err)
		return
	}
	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{"channel": channel, "receivers": receivers})
		p.logg.Info(logCtx, "push published")
	}
}

func (p *Publisher) logError(ctx context.Context, channel, msg string, err error) {
	if p.logg == nil {
		return
	}
	p.logg.Error(p.logg.WithField(ctx, "channel", channel), msg, err)
}
