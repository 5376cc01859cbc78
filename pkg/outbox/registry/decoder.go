package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

// Decoder turns the data section of an envelope into its typed event.
type Decoder func(payload json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry holds the payload versions a consumer understands.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[decoderKey]Decoder
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]Decoder)}
}

// NotificationDecoders covers every notification_requested version the worker accepts.
func NotificationDecoders() *DecoderRegistry {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventNotificationRequested, 1, JSONDecoder[payloads.NotificationRequestedEvent]())
	return reg
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode picks the decoder for eventType at version. Envelopes written before
// versioning carry 0 and are read as version 1. Unknown versions and malformed
// payloads are non-retryable.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	if version == 0 {
		version = 1
	}
	r.mu.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mu.RUnlock()
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("decoder not registered for %s@v%d", eventType, version))
	}
	return decoder(payload)
}

// JSONDecoder unmarshals into a fresh T and returns it by value.
func JSONDecoder[T any]() Decoder {
	return func(payload json.RawMessage) (any, error) {
		var out T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, NewNonRetryableError(fmt.Errorf("decode payload: %w", err))
		}
		return out, nil
	}
}
