// Package kafka consumes order events and turns them into delivery commands.
package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler processes one message. Returning nil commits the offset; an error
// retries the message up to the consumer's attempt limit.
type Handler func(ctx context.Context, msg kafka.Message) error

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewReader builds a consumer group reader with manual commits.
func NewReader(brokers []string, group, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
}

// ConsumerOptions tunes the worker pool and retries. OnExhausted, when set, is
// called once a message failed every attempt, before its offset is committed.
type ConsumerOptions struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
	OnExhausted func(ctx context.Context, msg kafka.Message, err error)
}

// Consumer fetches messages on one goroutine and hands them to a worker pool.
// Offsets are committed only after the handler finished with the message and
// with every earlier message of the same partition.
type Consumer struct {
	r       MessageReader
	opts    ConsumerOptions
	offsets *offsetTracker
	logger  zerolog.Logger
}

func NewConsumer(r MessageReader, opts ConsumerOptions, logger zerolog.Logger) *Consumer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &Consumer{
		r:       r,
		opts:    opts,
		offsets: newOffsetTracker(),
		logger:  logger.With().Str("component", "kafka-consumer").Logger(),
	}
}

// Run consumes until ctx is cancelled or the reader fails. Shutdown through ctx
// returns nil.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer func() {
		if err := c.r.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("reader close failed")
		}
	}()

	jobs := make(chan kafka.Message, c.opts.Workers)
	var wg sync.WaitGroup
	for range c.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				c.process(ctx, h, msg)
			}
		}()
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		c.offsets.add(msg)
		select {
		case jobs <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, h Handler, msg kafka.Message) {
	log := c.logger.With().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Logger()

	var err error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err = h(ctx, msg); err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("message handling failed")

		if attempt < c.opts.MaxAttempts {
			select {
			case <-time.After(c.opts.Backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return
			}
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("message skipped after retries")
		if c.opts.OnExhausted != nil {
			c.opts.OnExhausted(ctx, msg, err)
		}
	}

	if err := c.offsets.commit(ctx, c.r, msg); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("offset commit failed")
	}
}
