package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

// Message is a single record written to a topic.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Producer publishes outbox records to Kafka with acks from all in-sync replicas.
type Producer struct {
	producer sarama.SyncProducer
	cfg      config.KafkaConfig
	logg     *logger.Logger
}

// NewProducer dials the configured brokers.
func NewProducer(cfg config.KafkaConfig, logg *logger.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return NewProducerFrom(producer, cfg, logg), nil
}

// NewProducerFrom wraps an existing sarama producer, mainly for tests.
func NewProducerFrom(producer sarama.SyncProducer, cfg config.KafkaConfig, logg *logger.Logger) *Producer {
	return &Producer{producer: producer, cfg: cfg, logg: logg}
}

func newSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Return.Successes = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Version = sarama.V2_6_0_0
	return sc
}

// Publish sends msg synchronously. The topic is namespaced with the configured prefix.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka producer not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	topic := p.cfg.Topic(msg.Topic)
	record := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg.Value),
	}
	if msg.Key != "" {
		record.Key = sarama.StringEncoder(msg.Key)
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(record)
	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	if p.logg != nil {
		p.logg.Info(p.logg.WithFields(ctx, map[string]any{
			"topic":     topic,
			"partition": partition,
			"offset":    offset,
			"key":       msg.Key,
		}), "record published to kafka")
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
