// Package kafka publishes delivery events to Kafka.
package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a writer that hashes message keys so every event of an order
// lands on the same partition.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// Producer buffers messages in memory and writes them from a single goroutine, so
// Publish never blocks request handling. When the buffer is full the message is
// dropped and logged.
type Producer struct {
	w            MessageWriter
	inbox        chan kafka.Message
	writeTimeout time.Duration
	logger       zerolog.Logger
}

func NewProducer(w MessageWriter, buffer int, logger zerolog.Logger) *Producer {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Producer{
		w:            w,
		inbox:        make(chan kafka.Message, buffer),
		writeTimeout: 10 * time.Second,
		logger:       logger.With().Str("component", "kafka-producer").Logger(),
	}
}

// Publish queues a message. It returns false when the buffer is full.
func (p *Producer) Publish(key, value []byte) bool {
	msg := kafka.Message{Key: key, Value: value, Time: time.Now()}
	select {
	case p.inbox <- msg:
		return true
	default:
		p.logger.Warn().Bytes("key", key).Msg("producer buffer full, event dropped")
		return false
	}
}

// Run writes queued messages until ctx is cancelled, then flushes what is still
// buffered and closes the writer.
func (p *Producer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return p.w.Close()
		case msg := <-p.inbox:
			p.write(msg)
		}
	}
}

func (p *Producer) flush() {
	for {
		select {
		case msg := <-p.inbox:
			p.write(msg)
		default:
			return
		}
	}
}

func (p *Producer) write(msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.w.WriteMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error().Err(err).Bytes("key", msg.Key).Msg("event write failed")
	}
}
