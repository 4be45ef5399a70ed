package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes one decoded event. A returned error nacks the message
// so the broker redelivers it.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer decodes JSON events of type T from one topic and passes them to a
// Handler, one message at a time.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer of topic. Nothing is read until Start.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the subscribed topic.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled, the subscription closes, or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	msgs, err := c.subscriber.Subscribe(runCtx, c.topic)
	if err != nil {
		cancel()
		close(c.done)

		return err
	}

	go c.run(runCtx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-msgs:
			if !open {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	log := c.logger.With(zap.String("message_id", msg.UUID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// Redelivery cannot fix a malformed payload, so it is acked and dropped.
		log.Error("dropping undecodable event", zap.Int("payload_bytes", len(msg.Payload)), zap.Error(err))
		msg.Ack()

		return
	}

	if err := c.handler(ctx, &event); err != nil {
		log.Error("event handler failed, requesting redelivery", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()
	log.Debug("event handled")
}

// Shutdown cancels consumption and waits for the message in progress.
// A consumer that was never started returns immediately.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
