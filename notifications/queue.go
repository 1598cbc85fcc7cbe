package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is an outbound notification message, published only after the
// transaction that produced it has committed.
type Event struct {
	Type     Type                   `json:"type"`
	UserID   uint                   `json:"user_id"`
	OrderID  uint                   `json:"order_id,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Override bool                   `json:"override_preferences,omitempty"`
}

// Queue hands events from request handlers to the dispatch worker.
type Queue interface {
	Publish(ctx context.Context, evt Event) error
	Consume(ctx context.Context, handle func(Event) error) error
	Close() error
}

// ErrQueueClosed is returned for publishes that arrive after shutdown began.
var ErrQueueClosed = errors.New("notification queue is closed")

// ChannelQueue is the in-process queue used when no broker is configured.
// The channel itself is never closed; request handlers may still be
// publishing while shutdown runs, so Close only flips the flag and Consume
// exits on context cancellation.
type ChannelQueue struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func NewChannelQueue(size int) *ChannelQueue {
	if size <= 0 {
		size = 256
	}
	return &ChannelQueue{ch: make(chan Event, size)}
}

func (q *ChannelQueue) Publish(ctx context.Context, evt Event) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Consume(ctx context.Context, handle func(Event) error) error {
	for {
		select {
		case evt := <-q.ch:
			if err := handle(evt); err != nil {
				// Handler errors are logged by the worker; keep consuming.
				continue
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ChannelQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return nil
}

// RabbitQueue carries events over a durable RabbitMQ queue so notification
// delivery survives process restarts.
type RabbitQueue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewRabbitQueue(url, queueName string) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return &RabbitQueue{conn: conn, channel: ch, queueName: queueName}, nil
}

func (q *RabbitQueue) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return q.channel.PublishWithContext(ctx, "", q.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (q *RabbitQueue) Consume(ctx context.Context, handle func(Event) error) error {
	msgs, err := q.channel.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				msg.Nack(false, false)
				continue
			}
			if err := handle(evt); err != nil {
				msg.Nack(false, true)
				continue
			}
			msg.Ack(false)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *RabbitQueue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
