package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"PostGenius/models"
	"PostGenius/utils"

	"github.com/streadway/amqp"
)

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier broadcasts post events on a fanout exchange. Delivery is best
// effort: a failed publish is logged and never blocks the caller's transition.
type AMQPNotifier struct {
	ch       publisher
	closer   func() error
	exchange string
	mu       sync.Mutex
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	utils.Infof("[Events] publishing post events to exchange %q", exchange)
	n := newAMQPNotifier(ch, exchange)
	n.closer = func() error {
		ch.Close()
		return conn.Close()
	}
	return n, nil
}

func newAMQPNotifier(ch publisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange}
}

func (n *AMQPNotifier) Notify(_ context.Context, event models.PostEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		utils.Errorf("[Events] encode %s: %v", event.Type, err)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.ch.Publish(
		n.exchange,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
			Type:         string(event.Type),
			Body:         body,
		})
	if err != nil {
		utils.Warnf("[Events] publish %s for post %s: %v", event.Type, event.PostID, err)
	}
}

func (n *AMQPNotifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}
