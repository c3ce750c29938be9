package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
)

type Config struct {
	Brokers []string
	GroupID string
	// TopicPrefix is prepended to every channel name
	TopicPrefix string
}

type KafkaBroker struct {
	writer *kafka.Writer
	config Config
	logger *logger.Logger
}

func NewKafkaBroker(config Config, log *logger.Logger) (messaging.Broker, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka broker list is empty")
	}

	// Topic is left empty so every message carries its own.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &KafkaBroker{writer: writer, config: config, logger: log}, nil
}

func (b *KafkaBroker) topic(channel string) string {
	return b.config.TopicPrefix + channel
}

func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: b.topic(channel),
		Key:   []byte(channel),
		Value: payload,
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.config.Brokers,
		Topic:    b.topic(channel),
		GroupID:  b.config.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	msgChan := make(chan []byte, 100)
	go func() {
		defer func() {
			reader.Close()
			close(msgChan)
		}()

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Error(err, "failed to read kafka message", "topic", b.topic(channel))
				}
				return
			}
			select {
			case msgChan <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
