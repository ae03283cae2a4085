package checkout_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"github.com/nikolayk812/cartcheckout/internal/wallet"
)

type fakeCart struct {
	mu      sync.Mutex
	lines   map[string][]domain.CartLine
	listErr error
}

func newFakeCart() *fakeCart {
	return &fakeCart{lines: make(map[string][]domain.CartLine)}
}

func (c *fakeCart) List(_ context.Context, ownerID string) ([]domain.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	return slices.Clone(c.lines[ownerID]), nil
}

func (c *fakeCart) Create(context.Context, string, domain.CartLine) (domain.LineRef, error) {
	panic("not used by checkout")
}

func (c *fakeCart) Update(context.Context, string, string, int, domain.Money) error {
	panic("not used by checkout")
}

func (c *fakeCart) Delete(context.Context, string, string) error {
	panic("not used by checkout")
}

func (c *fakeCart) put(ownerID string, lines ...domain.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[ownerID] = append(c.lines[ownerID], lines...)
}

type fakeOrders struct {
	mu        sync.Mutex
	submitted []domain.OrderContext
	submitErr error
	// entered and release let a test hold Submit open.
	entered chan struct{}
	release chan struct{}
}

func (o *fakeOrders) Submit(_ context.Context, oc domain.OrderContext) (uuid.UUID, error) {
	if o.entered != nil {
		o.entered <- struct{}{}
		<-o.release
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submitErr != nil {
		return uuid.Nil, o.submitErr
	}
	o.submitted = append(o.submitted, oc)
	return uuid.New(), nil
}

func (o *fakeOrders) History(_ context.Context, ownerID string) ([]domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []domain.Order
	for _, oc := range o.submitted {
		if oc.OwnerID == ownerID {
			out = append(out, domain.Order{OwnerID: oc.OwnerID, Amount: oc.Amount, Status: domain.OrderStatusPending})
		}
	}
	return out, nil
}

func (o *fakeOrders) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.submitted)
}

type fakeProfiles map[string]domain.Profile

func (p fakeProfiles) GetProfile(_ context.Context, ownerID string) (domain.Profile, error) {
	profile, ok := p[ownerID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return profile, nil
}

type fakePrefs map[string]domain.Remembered

func (p fakePrefs) Remembered(_ context.Context, ownerID string) (domain.Remembered, error) {
	return p[ownerID], nil
}

func (p fakePrefs) Remember(_ context.Context, ownerID string, r domain.Remembered) error {
	p[ownerID] = r
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (e *fakeEvents) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orders = append(e.orders, order)
	return nil
}

// keyedWallet applies each idempotency key once, the way the wallet endpoint
// does, and can drop the response of the first credit after applying it.
type keyedWallet struct {
	*wallet.Memory

	mu              sync.Mutex
	applied         map[string]domain.Money
	keys            []string
	credits         int
	loseFirstCredit bool
	creditErr       error
}

func newKeyedWallet(m *wallet.Memory) *keyedWallet {
	return &keyedWallet{Memory: m, applied: make(map[string]domain.Money)}
}

func (w *keyedWallet) Debit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	w.mu.Lock()
	w.keys = append(w.keys, idempotency.KeyFrom(ctx))
	w.mu.Unlock()
	return w.Memory.Debit(ctx, ownerID, amount)
}

func (w *keyedWallet) Credit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := idempotency.KeyFrom(ctx)
	w.keys = append(w.keys, key)
	w.credits++
	if w.creditErr != nil {
		return domain.Money{}, w.creditErr
	}
	if balance, ok := w.applied[key]; ok {
		return balance, nil
	}

	balance, err := w.Memory.Credit(ctx, ownerID, amount)
	if err != nil {
		return domain.Money{}, err
	}
	w.applied[key] = balance
	if w.loseFirstCredit {
		w.loseFirstCredit = false
		return domain.Money{}, fmt.Errorf("%w: response lost", domain.ErrTransport)
	}
	return balance, nil
}
