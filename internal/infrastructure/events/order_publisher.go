// Package events publica eventos de dominio en RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// EventTypeOrderCreated nombre del evento publicado tras un checkout exitoso.
const EventTypeOrderCreated = "OrderCreated"

var _ checkout.OrderPlacedHook = (*OrderPublisher)(nil)

// OrderLine línea del evento.
type OrderLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// OrderCreated cuerpo del mensaje. Los montos viajan como string decimal.
type OrderCreated struct {
	EventID   string      `json:"eventId"`
	EventType string      `json:"eventType"`
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	Total     string      `json:"total"`
	Items     []OrderLine `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

func newOrderCreated(o *entity.Order) OrderCreated {
	ev := OrderCreated{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderCreated,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total.StringFixed(2),
		Items:     make([]OrderLine, 0, len(o.Items)),
		Timestamp: o.CreatedAt,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
		})
	}
	return ev
}

// channel es el subconjunto de *amqp.Channel que usa el publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// OrderPublisher publica OrderCreated en una cola durable (exchange por defecto).
type OrderPublisher struct {
	ch    channel
	queue string
}

// NewOrderPublisher abre un canal y declara la cola.
func NewOrderPublisher(conn *amqp.Connection, queue string) (*OrderPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &OrderPublisher{ch: ch, queue: queue}, nil
}

// OrderPlaced implementa checkout.OrderPlacedHook.
func (p *OrderPublisher) OrderPlaced(ctx context.Context, o *entity.Order) error {
	body, err := json.Marshal(newOrderCreated(o))
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    o.ID,
		Timestamp:    o.CreatedAt,
		Type:         EventTypeOrderCreated,
		Body:         body,
	})
}

// Close cierra el canal.
func (p *OrderPublisher) Close() error {
	return p.ch.Close()
}
