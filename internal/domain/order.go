package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID            uuid.UUID
	OwnerID       string
	Amount        Money
	PaymentMethod string
	Status        OrderStatus
	StoreID       string
	Contact       Contact
	Items         []OrderItem

	CreatedAt time.Time
}

// OrderItem is a denormalized copy of a cart line frozen at checkout.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice Money
	Kind      LineKind
}

func (i OrderItem) Subtotal() Money {
	return i.UnitPrice.Mul(i.Quantity)
}

type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderContext is everything the order store needs to place an order.
type OrderContext struct {
	OwnerID       string
	StoreID       string
	Contact       Contact
	PaymentMethod string
	Amount        Money
	Items         []OrderItem
}

func OrderItemsFromLines(lines []CartLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			Kind:      l.Kind,
		})
	}
	return items
}
