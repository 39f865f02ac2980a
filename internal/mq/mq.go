package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/schedule"
)

// Exchange and queue/routing key constants.
const (
	ExchangeName = "shutdowns"

	RoutingScheduleChanged = "schedule.changed"

	QueueScheduleChanged = "shutdowns.schedule_changed"
)

var log = logger.New("mq")

// ── Message types ────────────────────────────────────────────────────

// ScheduleChangedMsg is published when the current-day table differs from
// the one subscribers were last notified about.
type ScheduleChangedMsg struct {
	ChangedGroups []int          `json:"changed_groups"`
	ShapeChanged  bool           `json:"shape_changed"`
	FetchedAt     time.Time      `json:"fetched_at"`
	Groups        schedule.Table `json:"groups"`
}

// ── Topology setup ───────────────────────────────────────────────────

// queues maps queue names to their routing keys.
var queues = map[string]string{
	QueueScheduleChanged: RoutingScheduleChanged,
}

// SetupTopology declares the exchange, all queues, and bindings.
// Safe to call multiple times (all declarations are idempotent).
func SetupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	for queue, key := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}
	return nil
}

// ── Publisher ────────────────────────────────────────────────────────

// Publisher publishes messages to the RabbitMQ exchange.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher connects to RabbitMQ, sets up topology, and returns a Publisher.
func NewPublisher(ctx context.Context, url string) (*Publisher, error) {
	conn, ch, err := open(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish serializes msg to JSON and publishes it with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         data,
	})
}

// Close closes the channel and connection.
func (p *Publisher) Close() {
	closeAll(p.conn, p.ch)
}

// ── Consumer ─────────────────────────────────────────────────────────

// Consumer consumes messages from RabbitMQ queues.
type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer connects to RabbitMQ, sets up topology, and returns a Consumer.
func NewConsumer(ctx context.Context, url string) (*Consumer, error) {
	conn, ch, err := open(ctx, url)
	if err != nil {
		return nil, err
	}
	// Process one message at a time per consumer.
	if err := ch.Qos(1, 0, false); err != nil {
		closeAll(conn, ch)
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch}, nil
}

// Consume starts consuming from the given queue and returns a delivery channel.
func (c *Consumer) Consume(queue string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

// Close closes the channel and connection.
func (c *Consumer) Close() {
	closeAll(c.conn, c.ch)
}

// DecodeScheduleChanged parses a schedule.changed delivery body.
func DecodeScheduleChanged(body []byte) (ScheduleChangedMsg, error) {
	var msg ScheduleChangedMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("decode %s: %w", RoutingScheduleChanged, err)
	}
	return msg, nil
}

// ── Helpers ──────────────────────────────────────────────────────────

func open(ctx context.Context, url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := dialWithRetry(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(ch); err != nil {
		closeAll(conn, ch)
		return nil, nil, err
	}
	return conn, ch, nil
}

func closeAll(conn *amqp.Connection, ch *amqp.Channel) {
	if ch != nil {
		ch.Close()
	}
	if conn != nil {
		conn.Close()
	}
}

// dialWithRetry attempts to connect to RabbitMQ with exponential backoff.
func dialWithRetry(ctx context.Context, url string) (*amqp.Connection, error) {
	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	conn, err := backoff.RetryNotifyWithData(func() (*amqp.Connection, error) {
		attempt++
		return amqp.Dial(url)
	}, policy, func(err error, wait time.Duration) {
		log.Warnf("connection attempt %d failed: %v, retrying in %s", attempt, err, wait)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", attempt, err)
	}
	return conn, nil
}
