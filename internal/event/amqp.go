package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const exchangeKind = "topic"

// AMQPPublisher publishes domain events to a topic exchange. Event names
// become routing keys with ":" mapped to "." so consumers can bind with
// patterns like "order.*".
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Notify publishes the event. Failures are logged and dropped.
func (p *AMQPPublisher) Notify(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn("event marshal failed", zap.String("event", e.Name), zap.Error(err))
		return
	}

	routingKey := strings.ReplaceAll(e.Name, ":", ".")
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   e.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Warn("event publish failed", zap.String("event", e.Name), zap.Error(err))
	}
}

// Close tears down the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
