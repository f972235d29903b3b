package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

// Publisher sends JSON events to one durable direct exchange. A connection
// dropped by the broker is redialed on the next publish.
type Publisher struct {
	url        string
	exchange   string
	routingKey string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  chan *amqp.Error
}

func NewPublisher(amqpURL, exchangeName, routingKey string) (*Publisher, error) {
	p := &Publisher{url: amqpURL, exchange: exchangeName, routingKey: routingKey}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect requires p.mu or exclusive access to p
func (p *Publisher) connect() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		// the URL carries credentials, leave it out
		return fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange %q: %w", p.exchange, err)
	}
	p.conn, p.channel = conn, ch
	p.closed = conn.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *Publisher) connectedLocked() bool {
	if p.conn == nil || p.channel == nil {
		return false
	}
	select {
	case <-p.closed:
		return false
	default:
		return true
	}
}

// Publish sends message with the default routing key
func (p *Publisher) Publish(message interface{}) error {
	return p.PublishWithRoutingKey(p.routingKey, message)
}

func (p *Publisher) PublishWithRoutingKey(routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connectedLocked() {
		if p.conn != nil {
			log.Warnf("Broker connection lost, reconnecting to exchange %s", p.exchange)
		}
		if err := p.connect(); err != nil {
			return err
		}
	}

	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", p.exchange, routingKey, err)
	}
	return nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectedLocked()
}

// Close shuts the connection, which also closes its channel
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.channel = nil, nil
	if err != nil && !errors.Is(err, amqp.ErrClosed) {
		log.Warnf("Failed to close broker connection: %v", err)
		return err
	}
	return nil
}
