package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/boywithalo/marketplacen2/internal/order"
)

// Publisher emits storefront events on the shared topic exchange.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	ev := OrderPlaced{
		EventType: EventTypeOrderPlaced,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Timestamp: time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		EventsExchange,
		OrderPlacedRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    ev.Timestamp,
			Body:         body,
		},
	)
}
