// Package events publishes order lifecycle events to kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventOrderPlaced = "order.placed"

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(w MessageWriter) (*Publisher, error) {
	if w == nil {
		return nil, fmt.Errorf("writer is nil")
	}
	return &Publisher{writer: w, now: time.Now}, nil
}

type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	OwnerID  string      `json:"owner_id"`
	Amount   string      `json:"amount"`
	Currency string      `json:"currency"`
	StoreID  string      `json:"store_id"`
	Items    []OrderItem `json:"items"`
	PlacedAt time.Time   `json:"placed_at"`
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// PublishOrderPlaced keys the message by order id so all events of an order
// land on one partition.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = p.now().UTC()
	}

	payload := OrderPlaced{
		OrderID:  order.ID.String(),
		OwnerID:  order.OwnerID,
		Amount:   order.Amount.Amount.String(),
		Currency: order.Amount.Currency.String(),
		StoreID:  order.StoreID,
		PlacedAt: placedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderItem{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Amount.String(),
		})
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
