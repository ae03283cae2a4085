// Package shop is the surface the UI layer talks to: one Session per owner
// combining the reconciled cart view with checkout.
package shop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nikolayk812/cartcheckout/internal/cart"
	"github.com/nikolayk812/cartcheckout/internal/checkout"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/shopspring/decimal"
)

const defaultSessionTTL = 30 * time.Minute

type Shop struct {
	gw            port.CartGateway
	orch          *checkout.Orchestrator
	prefs         port.Preferences
	taxMultiplier decimal.Decimal
	sessionTTL    time.Duration
	now           func() time.Time
	log           *slog.Logger

	mu        sync.Mutex
	sessions  map[string]*cached
	nextSweep time.Time
}

type cached struct {
	sess     *Session
	lastUsed time.Time
}

type Option func(*Shop)

func WithLogger(l *slog.Logger) Option {
	return func(s *Shop) {
		s.log = l
	}
}

// WithPreferences lets sessions remember the store of the last added product.
func WithPreferences(p port.Preferences) Option {
	return func(s *Shop) {
		s.prefs = p
	}
}

func WithTaxMultiplier(m decimal.Decimal) Option {
	return func(s *Shop) {
		s.taxMultiplier = m
	}
}

// WithSessionTTL sets how long an unused session stays cached. Zero keeps
// sessions until Forget.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Shop) {
		s.sessionTTL = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Shop) {
		s.now = now
	}
}

func New(gw port.CartGateway, orch *checkout.Orchestrator, opts ...Option) (*Shop, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is nil")
	}

	s := &Shop{
		gw:            gw,
		orch:          orch,
		taxMultiplier: decimal.NewFromInt(1),
		sessionTTL:    defaultSessionTTL,
		now:           time.Now,
		log:           logging.Discard(),
		sessions:      make(map[string]*cached),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Session returns the owner's session, creating it and loading the
// authoritative cart on first use. A failed initial load leaves an empty view.
// The load runs without the shop lock, so a slow store only delays its owner.
func (s *Shop) Session(ctx context.Context, owner domain.Owner) (*Session, error) {
	if sess, ok := s.lookup(owner.ID); ok {
		return sess, nil
	}

	r, err := cart.NewReconciler(owner.ID, s.gw, cart.NewView(), cart.WithLogger(s.log.With("component", "cart")))
	if err != nil {
		return nil, fmt.Errorf("cart.NewReconciler: %w", err)
	}
	if err := r.Refresh(ctx); err != nil {
		s.log.Warn("initial cart load failed", "owner_id", owner.ID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a concurrent request for the same owner may have won
	if c, ok := s.sessions[owner.ID]; ok {
		c.lastUsed = s.now()
		return c.sess, nil
	}

	sess := &Session{owner: owner, shop: s, cart: r}
	s.sessions[owner.ID] = &cached{sess: sess, lastUsed: s.now()}
	return sess, nil
}

func (s *Shop) lookup(ownerID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdle()

	c, ok := s.sessions[ownerID]
	if !ok {
		return nil, false
	}
	c.lastUsed = s.now()
	return c.sess, true
}

// evictIdle drops sessions unused for longer than the session TTL, at most
// once per quarter TTL. s.mu must be held.
func (s *Shop) evictIdle() {
	if s.sessionTTL <= 0 {
		return
	}
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(s.sessionTTL / 4)

	var evicted int
	for id, c := range s.sessions {
		if now.Sub(c.lastUsed) > s.sessionTTL {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug("idle sessions evicted", "count", evicted, "remaining", len(s.sessions))
	}
}

// Forget drops the cached session of ownerID, e.g. on logout.
func (s *Shop) Forget(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

// Len reports how many sessions are cached.
func (s *Shop) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type Session struct {
	owner domain.Owner
	shop  *Shop
	cart  *cart.Reconciler
}

func (s *Session) Owner() domain.Owner {
	return s.owner
}

func (s *Session) AddToCart(ctx context.Context, product domain.Product, quantity int) (cart.Outcome, error) {
	outcome, err := s.cart.Add(ctx, product, quantity)
	if err != nil {
		return outcome, err
	}

	if s.shop.prefs != nil && product.StoreID != "" {
		if err := s.shop.prefs.Remember(ctx, s.owner.ID, domain.Remembered{StoreID: product.StoreID}); err != nil {
			s.shop.log.Warn("remember store failed", "owner_id", s.owner.ID, "error", err)
		}
	}
	return outcome, nil
}

func (s *Session) UpdateQuantity(ctx context.Context, lineID string, quantity int) (cart.Outcome, error) {
	return s.cart.UpdateQuantity(ctx, lineID, quantity)
}

func (s *Session) RemoveLine(ctx context.Context, lineID string) (cart.Outcome, error) {
	return s.cart.Remove(ctx, lineID)
}

func (s *Session) Refresh(ctx context.Context) error {
	return s.cart.Refresh(ctx)
}

func (s *Session) Checkout(ctx context.Context, paymentMethod string) (checkout.Result, error) {
	return s.shop.orch.Checkout(ctx, checkout.Request{
		OwnerID:       s.owner.ID,
		View:          s.cart.View(),
		TaxMultiplier: s.shop.taxMultiplier,
		PaymentMethod: paymentMethod,
	})
}

func (s *Session) Lines() []domain.CartLine {
	return s.cart.View().Lines()
}

func (s *Session) ItemCount() int {
	return s.cart.View().ItemCount()
}
