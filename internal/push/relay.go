package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

type patternSubscriber interface {
	PSubscribe(ctx context.Context, patterns ...string) (*goredis.PubSub, error)
}

// Relay forwards Redis push channels to the websocket hub of this replica.
type Relay struct {
	sub    patternSubscriber
	hub    *Hub
	prefix string
	logg   *logger.Logger
	now    func() time.Time
}

func NewRelay(sub patternSubscriber, hub *Hub, cfg config.PushConfig, logg *logger.Logger) (*Relay, error) {
	if sub == nil {
		return nil, fmt.Errorf("redis subscriber required")
	}
	if hub == nil {
		return nil, fmt.Errorf("websocket hub required")
	}
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = "push"
	}
	return &Relay{sub: sub, hub: hub, prefix: prefix, logg: logg, now: time.Now}, nil
}

// Run subscribes to every push channel and blocks until ctx is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ps, err := r.sub.PSubscribe(ctx, r.prefix+":*")
	if err != nil {
		return fmt.Errorf("subscribe push channels: %w", err)
	}
	defer ps.Close()
	return r.consume(ctx, ps.Channel())
}

func (r *Relay) consume(ctx context.Context, msgs <-chan *goredis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.forward(ctx, msg)
		}
	}
}

func (r *Relay) forward(ctx context.Context, msg *goredis.Message) {
	kind, userID, err := parseTopic(r.prefix, msg.Channel)
	if err != nil {
		if r.logg != nil {
			r.logg.Warn(r.logg.WithField(ctx, "channel", msg.Channel), err.Error())
		}
		return
	}
	data := json.RawMessage(msg.Payload)
	if !json.Valid(data) {
		data, _ = json.Marshal(msg.Payload)
	}
	frame := Frame{
		Kind:      kind,
		Data:      data,
		Timestamp: r.now().UTC().Format(time.RFC3339),
	}
	if !r.hub.Deliver(userID, frame) && r.logg != nil {
		r.logg.Warn(r.logg.WithUserID(ctx, userID.String()), "push dropped, hub queue full")
	}
}
