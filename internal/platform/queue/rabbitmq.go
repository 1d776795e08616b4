package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/martinmanurung/account-service/internal/platform/config"
	amqp "github.com/rabbitmq/amqp091-go"
	zlog "github.com/rs/zerolog/log"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialTimeout bounds the TCP connect and the AMQP handshake.
const dialTimeout = 5 * time.Second

type dialFunc func(ctx context.Context, url string) (channel, io.Closer, error)

func dialAMQP(ctx context.Context, url string) (channel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: dialTimeout}
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// cleared by the client once the handshake completes
			if err := conn.SetDeadline(time.Now().Add(dialTimeout)); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	return ch, conn, nil
}

// Publisher sends JSON messages to a durable quorum queue. The connection is
// opened once and reopened on the next publish if the broker drops it.
type Publisher struct {
	cfg  config.RabbitMQConfig
	dial dialFunc
	now  func() time.Time

	// lock is a one-slot semaphore so waiting callers can give up on ctx.
	lock chan struct{}
	conn io.Closer
	ch   channel
}

// NewPublisher connects to the broker and declares the queue topology.
func NewPublisher(ctx context.Context, cfg config.RabbitMQConfig) (*Publisher, error) {
	p := newPublisher(cfg, dialAMQP)
	if err := p.acquire(ctx); err != nil {
		return nil, err
	}
	defer p.release()
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	zlog.Info().Str("queue", cfg.Queue).Msg("RabbitMQ publisher ready")
	return p, nil
}

func newPublisher(cfg config.RabbitMQConfig, dial dialFunc) *Publisher {
	return &Publisher{cfg: cfg, dial: dial, now: time.Now, lock: make(chan struct{}, 1)}
}

func (p *Publisher) acquire(ctx context.Context) error {
	select {
	case p.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq: publisher busy: %w", ctx.Err())
	}
}

func (p *Publisher) release() {
	<-p.lock
}

// QueueArgs are the arguments the work queue is declared with.
func QueueArgs(cfg config.RabbitMQConfig) amqp.Table {
	args := amqp.Table{
		"x-queue-type": "quorum",
	}
	if cfg.DeadLetterExchange != "" {
		args["x-dead-letter-exchange"] = cfg.DeadLetterExchange
		args["x-dead-letter-routing-key"] = cfg.DeadLetterRoutingKey
	}
	if cfg.DeliveryLimit > 0 {
		args["x-delivery-limit"] = int64(cfg.DeliveryLimit)
	}
	return args
}

// connect must be called with the lock held.
func (p *Publisher) connect(ctx context.Context) error {
	ch, conn, err := p.dial(ctx, p.cfg.URL)
	if err != nil {
		return err
	}
	if err := p.declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

func (p *Publisher) declare(ch channel) error {
	if p.cfg.DeadLetterExchange != "" {
		if err := ch.ExchangeDeclare(p.cfg.DeadLetterExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
		}
		deadQueue := p.cfg.Queue + ".dead"
		if _, err := ch.QueueDeclare(deadQueue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: dead letter queue declare failed: %w", err)
		}
		if err := ch.QueueBind(deadQueue, p.cfg.DeadLetterRoutingKey, p.cfg.DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: dead letter bind failed: %w", err)
		}
	}

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, QueueArgs(p.cfg)); err != nil {
		return fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}
	return nil
}

// Publish marshals message as JSON and sends it as a persistent message to
// the configured queue.
func (p *Publisher) Publish(ctx context.Context, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal message failed: %w", err)
	}

	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	if p.ch == nil || p.ch.IsClosed() {
		p.reset()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rabbitmq: reconnect skipped: %w", err)
		}
		if err := p.connect(ctx); err != nil {
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

// reset must be called with the lock held.
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *Publisher) Close() error {
	_ = p.acquire(context.Background())
	defer p.release()

	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	p.ch, p.conn = nil, nil
	return errors.Join(errs...)
}
