// Package queue wraps a single long-lived AMQP connection/channel pair.
// Delivery semantics are deliberate and limited: persistent messages, manual
// ack, and nack without requeue on handler failure, so a message that fails
// once is dropped rather than retried. Connection loss is not handled here;
// the process restarts instead of reconnecting.
package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const (
	FormulaGenerateQueue = "formula.generate"
	DomainKnowledgeQueue = "domain.knowledge"
	DatabaseQueryQueue   = "database.query"
)

// GenerateMessage is the wire schema on formula.generate. UserID crosses the
// wire as a decimal string; the consumer parses it back to the numeric key.
type GenerateMessage struct {
	TaskID      string `json:"taskId"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	Timestamp   string `json:"timestamp"`
}

// Handler processes one delivery. A nil return acknowledges the message;
// an error negative-acknowledges it without requeue.
type Handler func(ctx context.Context, body []byte) error

type Publisher interface {
	Publish(ctx context.Context, queueName string, payload any) error
}

// Unavailable stands in for the broker when the deployment runs without one;
// every publish reports errs.QueueUnavailable.
var Unavailable Publisher = unavailablePublisher{}

type unavailablePublisher struct{}

func (unavailablePublisher) Publish(context.Context, string, any) error {
	return errs.QueueUnavailable
}

type Broker struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	mu        sync.RWMutex
	available bool

	wg sync.WaitGroup
}

// Connect dials the broker and idempotently declares the three durable
// queues. Only formula.generate has a real consumer; the other two are
// placeholders drained by acknowledge-only stubs.
func Connect(cfg conf.Queue) (*Broker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}
	for _, name := range []string{FormulaGenerateQueue, DomainKnowledgeQueue, DatabaseQueryQueue} {
		if _, err := channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, errors.Wrapf(err, "failed to declare queue %s", name)
		}
	}
	log.Info("connected to RabbitMQ")
	return &Broker{conn: conn, channel: channel, available: true}, nil
}

func (b *Broker) Available() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.available && !b.conn.IsClosed()
}

// Publish serializes payload to JSON and sends it as a persistent message.
func (b *Broker) Publish(ctx context.Context, queueName string, payload any) error {
	if !b.Available() {
		return errs.QueueUnavailable
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal queue payload")
	}
	err = b.channel.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	return errors.Wrapf(err, "failed to publish to %s", queueName)
}

// Consume registers handler on queueName with manual acknowledgement and
// processes deliveries one at a time in delivery order.
func (b *Broker) Consume(ctx context.Context, queueName string, handler Handler) error {
	if err := b.channel.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "failed to set QoS")
	}
	deliveries, err := b.channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to consume %s", queueName)
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					b.mu.Lock()
					b.available = false
					b.mu.Unlock()
					log.Warnf("delivery channel for %s closed", queueName)
					return
				}
				if err := handler(ctx, d.Body); err != nil {
					log.Errorf("message on %s failed: %v", queueName, err)
					// Dropped, not retried. Known gap: there is no retry
					// queue or dead-letter path.
					if nerr := d.Nack(false, false); nerr != nil {
						log.Warnf("nack failed: %v", nerr)
					}
					continue
				}
				if aerr := d.Ack(false); aerr != nil {
					log.Warnf("ack failed: %v", aerr)
				}
			}
		}
	}()
	return nil
}

// ConsumeStub drains a placeholder queue, acknowledging unconditionally.
func (b *Broker) ConsumeStub(ctx context.Context, queueName string) error {
	return b.Consume(ctx, queueName, func(_ context.Context, body []byte) error {
		log.Debugf("drained message on %s: %s", queueName, string(body))
		return nil
	})
}

func (b *Broker) Close() error {
	b.mu.Lock()
	b.available = false
	b.mu.Unlock()
	if err := b.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.WithStack(err)
	}
	if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.WithStack(err)
	}
	b.wg.Wait()
	return nil
}
