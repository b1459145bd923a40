package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/billrun/billrun/internal/kafka"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/pubsub"
)

type PubSub struct {
	producer *kafka.Producer
	consumer *kafka.Consumer
	logger   *logger.Logger
}

// NewPubSub creates a new kafka-based pubsub
func NewPubSub(
	logger *logger.Logger,
	producer *kafka.Producer,
	consumer *kafka.Consumer,
) pubsub.PubSub {
	return &PubSub{
		producer: producer,
		consumer: consumer,
		logger:   logger,
	}
}

// Publish publishes a billing event
func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	return p.producer.Publish(topic, msg)
}

// Subscribe starts consuming billing events
func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.consumer.Subscribe(topic)
}

// Close closes the pubsub
func (p *PubSub) Close() error {
	if err := p.producer.Close(); err != nil {
		p.logger.Errorw("failed to close producer", "error", err)
	}
	return p.consumer.Close()
}
