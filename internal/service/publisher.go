package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nyumbalink/nyumbalink/internal/config"
	"github.com/nyumbalink/nyumbalink/internal/queue"
)

// QueuePublisher publishes events as persistent JSON messages to the
// notification queue.  When the broker cannot be reached the event goes to
// Fallback instead, so notifications survive a RabbitMQ outage.
type QueuePublisher struct {
	cfg      config.QueueConfig
	Fallback Dispatcher

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewQueuePublisher returns a publisher that dials lazily on first use.
func NewQueuePublisher(cfg config.QueueConfig, fallback Dispatcher) *QueuePublisher {
	return &QueuePublisher{cfg: cfg, Fallback: fallback}
}

// Dispatch implements Dispatcher.
func (p *QueuePublisher) Dispatch(ctx context.Context, ev queue.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("rabbitmq: publish %s failed, delivering directly: %v", ev.Type, err)
		if p.Fallback != nil {
			p.Fallback.Dispatch(ctx, ev)
		}
	}
}

// Publish sends one event.  The connection is reused between calls and
// redialled after the broker drops it.
func (p *QueuePublisher) Publish(ctx context.Context, ev queue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.reset()
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",          // default exchange
		p.cfg.Queue, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Type:         ev.Type,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

func (p *QueuePublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *QueuePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *QueuePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
