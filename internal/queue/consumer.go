package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/nyumbalink/nyumbalink/internal/config"
)

// ErrUndeliverable marks a message that can never be delivered: a body
// that does not decode, an event without type or recipient, or one whose
// recipient no longer exists.  Such messages are dropped; any other
// delivery error requeues the message.
var ErrUndeliverable = errors.New("undeliverable event")

// requeueDelay spaces out redeliveries while the database is failing.
const requeueDelay = 2 * time.Second

// Deliverer turns an Event into a stored notification.
type Deliverer interface {
    Deliver(ctx context.Context, ev Event) error
}

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// notification queue and hands each message to d.  It reconnects with
// exponential backoff and only returns once ctx is cancelled.
// Undeliverable messages are rejected; failed deliveries are requeued.
func StartNotificationConsumer(ctx context.Context, cfg config.QueueConfig, d Deliverer) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(cfg.URL)
        if err != nil {
            log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, cfg, d)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.QueueConfig, d Deliverer) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
        log.Printf("notify-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case m, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            err := HandleMessage(ctx, m.Body, d)
            switch {
            case err == nil:
                _ = m.Ack(false)
            case !Requeue(err):
                log.Printf("notify-consumer: message %s dropped: %v", m.MessageId, err)
                _ = m.Nack(false, false)
            default:
                log.Printf("notify-consumer: message %s requeued: %v", m.MessageId, err)
                sleep(ctx, requeueDelay)
                _ = m.Nack(false, true)
            }
        }
    }
}

// HandleMessage decodes one message body and delivers it.
func HandleMessage(ctx context.Context, body []byte, d Deliverer) error {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("%w: unmarshal: %v", ErrUndeliverable, err)
    }
    if ev.Type == "" || ev.RecipientID == 0 {
        return fmt.Errorf("%w: no type or recipient", ErrUndeliverable)
    }
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    return d.Deliver(ctx, ev)
}

// Requeue reports whether a message that failed with err is worth
// another attempt.
func Requeue(err error) bool {
    return err != nil && !errors.Is(err, ErrUndeliverable)
}
