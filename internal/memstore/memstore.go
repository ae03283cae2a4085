// Package memstore holds in-process cart, order and profile stores with the
// same contracts as the Postgres ones. Used for local runs and tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
)

type Cart struct {
	mu    sync.Mutex
	lines map[string][]domain.CartLine
	now   func() time.Time
}

func NewCart() *Cart {
	return &Cart{
		lines: make(map[string][]domain.CartLine),
		now:   time.Now,
	}
}

func (c *Cart) List(_ context.Context, ownerID string) ([]domain.CartLine, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines[ownerID]), nil
}

func (c *Cart) Create(_ context.Context, ownerID string, line domain.CartLine) (domain.LineRef, error) {
	if ownerID == "" {
		return domain.LineRef{}, fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(line.Quantity) {
		return domain.LineRef{}, domain.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lines[ownerID] {
		if l.ProductID == line.ProductID {
			return domain.LineRef{}, fmt.Errorf("product[%s]: %w", line.ProductID, domain.ErrConflict)
		}
	}

	line.LineID = uuid.NewString()
	line.Local = false
	if line.Kind == "" {
		line.Kind = domain.KindProduct
	}
	line.CreatedAt = c.now()
	c.lines[ownerID] = append(c.lines[ownerID], line)

	return domain.LineRef{LineID: line.LineID}, nil
}

func (c *Cart) Update(_ context.Context, ownerID, lineID string, quantity int, unitPrice domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(quantity) {
		return domain.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range c.lines[ownerID] {
		if l.LineID == lineID {
			c.lines[ownerID][i].Quantity = quantity
			c.lines[ownerID][i].Price = unitPrice
			return nil
		}
	}
	return fmt.Errorf("line[%s]: %w", lineID, domain.ErrNotFound)
}

func (c *Cart) Delete(_ context.Context, ownerID, lineID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.lines[ownerID]
	for i, l := range lines {
		if l.LineID == lineID {
			c.lines[ownerID] = slices.Delete(lines, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("line[%s]: %w", lineID, domain.ErrNotFound)
}

func (c *Cart) removeProducts(ownerID string, items []domain.OrderItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines[ownerID] = slices.DeleteFunc(c.lines[ownerID], func(l domain.CartLine) bool {
		return slices.ContainsFunc(items, func(it domain.OrderItem) bool {
			return it.ProductID == l.ProductID
		})
	})
	if len(c.lines[ownerID]) == 0 {
		delete(c.lines, ownerID)
	}
}

// Orders removes the ordered products from the owner's cart on submit when
// built with a Cart.
type Orders struct {
	mu     sync.Mutex
	orders map[string][]domain.Order
	cart   *Cart
	now    func() time.Time
}

func NewOrders(cart *Cart) *Orders {
	return &Orders{
		orders: make(map[string][]domain.Order),
		cart:   cart,
		now:    time.Now,
	}
}

func (o *Orders) Submit(_ context.Context, oc domain.OrderContext) (uuid.UUID, error) {
	if oc.OwnerID == "" {
		return uuid.Nil, fmt.Errorf("ownerID is empty")
	}
	if len(oc.Items) == 0 {
		return uuid.Nil, domain.ErrEmptyCart
	}
	if !oc.Amount.Amount.IsPositive() {
		return uuid.Nil, domain.ErrInvalidCartTotal
	}
	for _, item := range oc.Items {
		if !domain.ValidQuantity(item.Quantity) {
			return uuid.Nil, domain.ErrInvalidQuantity
		}
	}

	order := domain.Order{
		ID:            uuid.New(),
		OwnerID:       oc.OwnerID,
		Amount:        oc.Amount,
		PaymentMethod: oc.PaymentMethod,
		Status:        domain.OrderStatusPending,
		StoreID:       oc.StoreID,
		Contact:       oc.Contact,
		Items:         slices.Clone(oc.Items),
		CreatedAt:     o.now(),
	}

	o.mu.Lock()
	o.orders[oc.OwnerID] = append(o.orders[oc.OwnerID], order)
	o.mu.Unlock()

	if o.cart != nil {
		o.cart.removeProducts(oc.OwnerID, oc.Items)
	}
	return order.ID, nil
}

// History returns the owner's orders, newest first.
func (o *Orders) History(_ context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	out := slices.Clone(o.orders[ownerID])
	slices.Reverse(out)
	return out, nil
}

type Profiles struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfiles() *Profiles {
	return &Profiles{profiles: make(map[string]domain.Profile)}
}

func (p *Profiles) GetProfile(_ context.Context, ownerID string) (domain.Profile, error) {
	if ownerID == "" {
		return domain.Profile{}, fmt.Errorf("ownerID is empty")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	profile, ok := p.profiles[ownerID]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile[%s]: %w", ownerID, domain.ErrNotFound)
	}
	return profile, nil
}

func (p *Profiles) SaveProfile(_ context.Context, profile domain.Profile) error {
	if profile.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.OwnerID] = profile
	return nil
}
