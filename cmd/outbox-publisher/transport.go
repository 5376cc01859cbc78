package main

import (
	"context"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/LeDucTai-11/MyStore-BE/pkg/kafka"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/registry"
)

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type publisherFactory func(topic string) publisher

// pubSubTransport publishes to Google Pub/Sub topics, one publisher per topic.
type pubSubTransport struct {
	client  pubSubClient
	factory publisherFactory
}

func newPubSubTransport(client pubSubClient) *pubSubTransport {
	return &pubSubTransport{
		client: client,
		factory: func(topic string) publisher {
			p := client.Publisher(topic)
			if p == nil {
				return nil
			}
			return &gcpPublisher{Publisher: p}
		},
	}
}

func (t *pubSubTransport) Name() string { return "pubsub" }

func (t *pubSubTransport) Ping(ctx context.Context) error {
	return t.client.Ping(ctx)
}

func (t *pubSubTransport) Send(ctx context.Context, topic string, msg outboundMessage) error {
	pub := t.factory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data:       msg.Data,
		Attributes: msg.Attributes,
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(ctx)
	return err
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

type kafkaProducer interface {
	Publish(context.Context, kafka.Message) error
}

// kafkaTransport keys records by aggregate id so one order's events stay on one partition.
type kafkaTransport struct {
	producer kafkaProducer
}

func newKafkaTransport(producer kafkaProducer) *kafkaTransport {
	return &kafkaTransport{producer: producer}
}

func (t *kafkaTransport) Name() string { return "kafka" }

// Ping is a no-op; sarama dials the brokers when the producer is built.
func (t *kafkaTransport) Ping(context.Context) error {
	if t.producer == nil {
		return errors.New("kafka producer not initialized")
	}
	return nil
}

func (t *kafkaTransport) Send(ctx context.Context, topic string, msg outboundMessage) error {
	return t.producer.Publish(ctx, kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Data,
		Headers: msg.Attributes,
	})
}
