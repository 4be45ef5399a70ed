package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func startConsumer(t *testing.T, sub *mockSubscriber, handler messaging.Handler[testEvent]) *messaging.Consumer[testEvent] {
	t.Helper()

	consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())
	require.NoError(t, consumer.Start(context.Background()))

	t.Cleanup(func() { _ = consumer.Shutdown() })

	return consumer
}

func newTestMessage(t *testing.T, event *testEvent) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

func TestConsumer_Start(t *testing.T) {
	t.Run("starts successfully", func(t *testing.T) {
		consumer := startConsumer(t, newMockSubscriber(), func(context.Context, *testEvent) error { return nil })

		assert.Equal(t, "test.topic", consumer.Topic())
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"test.topic",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		err := consumer.Start(context.Background())

		require.Error(t, err)
		// Shutdown after a failed start must not block.
		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		sub := newMockSubscriber()
		received := make(chan *testEvent, 1)

		startConsumer(t, sub, func(_ context.Context, event *testEvent) error {
			received <- event

			return nil
		})

		msg := newTestMessage(t, &testEvent{ID: "123", Name: "test"})
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			event := <-received
			assert.Equal(t, "123", event.ID)
			assert.Equal(t, "test", event.Name)
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}
	})

	t.Run("drops malformed payloads", func(t *testing.T) {
		sub := newMockSubscriber()
		called := false

		startConsumer(t, sub, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			assert.False(t, called)
		case <-msg.Nacked():
			t.Fatal("malformed message should not be redelivered")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := newMockSubscriber()

		startConsumer(t, sub, func(context.Context, *testEvent) error {
			return errors.New("handler error")
		})

		msg := newTestMessage(t, &testEvent{ID: "123"})
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("stops when subscriber channel closes", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"test.topic",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		require.NoError(t, sub.Close())

		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("never started returns immediately", func(t *testing.T) {
		consumer := messaging.NewConsumer(
			newMockSubscriber(),
			"test.topic",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sub := newMockSubscriber()

	consumer := messaging.NewConsumer(sub, "url.shortened", func(context.Context, *testEvent) error {
		return errors.New("audit sink down")
	}, zap.New(core))
	require.NoError(t, consumer.Start(context.Background()))
	t.Cleanup(func() { _ = consumer.Shutdown() })

	msg := newTestMessage(t, &testEvent{ID: "1"})
	sub.msgChan <- msg

	select {
	case <-msg.Nacked():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for nack")
	}

	require.Eventually(t, func() bool {
		return logs.FilterMessage("event handler failed, requesting redelivery").Len() == 1
	}, time.Second, 10*time.Millisecond)

	fields := logs.FilterMessage("event handler failed, requesting redelivery").All()[0].ContextMap()
	assert.Equal(t, "url.shortened", fields["topic"])
	assert.Equal(t, msg.UUID, fields["message_id"])
	assert.Equal(t, "audit sink down", fields["error"])
}
