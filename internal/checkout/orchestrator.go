// Package checkout drives the checkout sequence: validate the cart, debit the
// wallet, submit the order, clear the cart. A failed submit credits the
// debited amount back.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/cart"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/price"
	"github.com/shopspring/decimal"
)

const (
	compensationAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

type Config struct {
	DefaultStoreID     string
	PlaceholderAddress string
	PlaceholderPhone   string
	PaymentMethod      string
	ClearDelay         time.Duration
}

type Request struct {
	OwnerID string
	View    *cart.View
	// TaxMultiplier scales the cart total into the charged amount. Zero means 1.
	TaxMultiplier decimal.Decimal
	PaymentMethod string
}

type Result struct {
	State    State
	Order    domain.Order
	Snapshot []domain.CartLine
	Charged  domain.Money
	Balance  domain.Money
	History  []domain.Order
	// Cleared is closed once the scheduled cart clear has run.
	Cleared <-chan struct{}
}

type Orchestrator struct {
	cart     port.CartGateway
	orders   port.OrderGateway
	wallet   port.Wallet
	profiles port.ProfileProvider
	prefs    port.Preferences
	events   port.EventPublisher

	cfg        Config
	log        *slog.Logger
	afterFunc  func(time.Duration, func())
	retryDelay time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

func WithPreferences(p port.Preferences) Option {
	return func(o *Orchestrator) {
		o.prefs = p
	}
}

func WithEventPublisher(p port.EventPublisher) Option {
	return func(o *Orchestrator) {
		o.events = p
	}
}

// WithAfterFunc replaces time.AfterFunc for scheduling the cart clear.
func WithAfterFunc(f func(time.Duration, func())) Option {
	return func(o *Orchestrator) {
		o.afterFunc = f
	}
}

// WithRetryDelay sets the pause between compensation attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.retryDelay = d
	}
}

func New(
	cartGW port.CartGateway,
	orders port.OrderGateway,
	wallet port.Wallet,
	profiles port.ProfileProvider,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if cartGW == nil || orders == nil || wallet == nil || profiles == nil {
		return nil, fmt.Errorf("checkout dependencies must not be nil")
	}
	if cfg.DefaultStoreID == "" {
		return nil, fmt.Errorf("default store id is empty")
	}

	o := &Orchestrator{
		cart:     cartGW,
		orders:   orders,
		wallet:   wallet,
		profiles: profiles,
		cfg:      cfg,
		log:      logging.Discard(),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		retryDelay: defaultRetryDelay,
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Checkout places an order for everything in the owner's authoritative cart.
// Only one checkout per owner runs at a time; a concurrent attempt fails with
// domain.ErrCheckoutInProgress before touching anything.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (Result, error) {
	if req.OwnerID == "" {
		return Result{State: StateIdle}, fmt.Errorf("ownerID is empty")
	}
	if !o.acquire(req.OwnerID) {
		return Result{State: StateIdle}, domain.ErrCheckoutInProgress
	}
	defer o.release(req.OwnerID)

	checkoutID := uuid.NewString()
	log := o.log.With("owner_id", req.OwnerID, "checkout_id", checkoutID)
	f := &flow{state: StateIdle, log: log}

	if err := f.moveTo(StateValidating); err != nil {
		return f.fail(), err
	}

	if req.View == nil || req.View.IsEmpty() {
		return f.fail(), domain.ErrEmptyCart
	}

	snapshot, err := o.cart.List(ctx, req.OwnerID)
	if err != nil {
		return f.fail(), fmt.Errorf("cart.List: %w", err)
	}

	total, err := cartTotal(snapshot)
	if err != nil {
		return f.fail(), err
	}

	charge, err := chargeFor(total, req.TaxMultiplier)
	if err != nil {
		return f.fail(), err
	}

	oc, err := o.orderContext(ctx, req, snapshot, total)
	if err != nil {
		return f.fail(), err
	}

	// past the debit the flow ends in Committed or full compensation
	ctx = context.WithoutCancel(ctx)

	balance, err := o.wallet.Debit(idempotency.WithKey(ctx, checkoutID+":debit"), req.OwnerID, charge)
	if err != nil {
		return f.fail(), fmt.Errorf("wallet.Debit: %w", err)
	}
	if err := f.moveTo(StateWalletDebited); err != nil {
		return f.fail(), errors.Join(err, o.compensate(ctx, log, checkoutID, req.OwnerID, charge))
	}

	orderID, err := o.orders.Submit(ctx, oc)
	if err != nil {
		log.Warn("order submit failed, compensating", "error", err, "charged", charge.String())
		return f.fail(), errors.Join(fmt.Errorf("orders.Submit: %w", err), o.compensate(ctx, log, checkoutID, req.OwnerID, charge))
	}
	if err := f.moveTo(StateOrderSubmitted); err != nil {
		return f.fail(), err
	}

	order := domain.Order{
		ID:            orderID,
		OwnerID:       req.OwnerID,
		Amount:        oc.Amount,
		PaymentMethod: oc.PaymentMethod,
		Status:        domain.OrderStatusPending,
		StoreID:       oc.StoreID,
		Contact:       oc.Contact,
		Items:         oc.Items,
	}

	history, err := o.orders.History(ctx, req.OwnerID)
	if err != nil {
		log.Warn("order history refresh failed", "order_id", orderID, "error", err)
	}

	if err := f.moveTo(StateCommitted); err != nil {
		return f.fail(), err
	}

	if o.events != nil {
		if err := o.events.PublishOrderPlaced(ctx, order); err != nil {
			log.Error("publish order placed failed", "order_id", orderID, "error", err)
		}
	}

	log.Info("checkout committed", "order_id", orderID, "amount", oc.Amount.String(), "charged", charge.String())

	return Result{
		State:    f.state,
		Order:    order,
		Snapshot: snapshot,
		Charged:  charge,
		Balance:  balance,
		History:  history,
		Cleared:  o.scheduleClear(req.View),
	}, nil
}

func (o *Orchestrator) orderContext(ctx context.Context, req Request, lines []domain.CartLine, total domain.Money) (domain.OrderContext, error) {
	var remembered domain.Remembered
	if o.prefs != nil {
		r, err := o.prefs.Remembered(ctx, req.OwnerID)
		if err != nil {
			o.log.Warn("remembered preferences unavailable", "owner_id", req.OwnerID, "error", err)
		} else {
			remembered = r
		}
	}

	profile, err := o.profiles.GetProfile(ctx, req.OwnerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.OrderContext{}, fmt.Errorf("profiles.GetProfile: %w", err)
	}
	if profile.Name == "" || profile.Email == "" {
		return domain.OrderContext{}, domain.ErrMissingContact
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = o.cfg.PaymentMethod
	}

	return domain.OrderContext{
		OwnerID: req.OwnerID,
		StoreID: firstNonEmpty(lines[0].StoreID, remembered.StoreID, o.cfg.DefaultStoreID),
		Contact: domain.Contact{
			Name:    profile.Name,
			Email:   profile.Email,
			Phone:   firstNonEmpty(remembered.Phone, profile.Phone, o.cfg.PlaceholderPhone),
			Address: firstNonEmpty(remembered.Address, profile.Address, o.cfg.PlaceholderAddress),
		},
		PaymentMethod: paymentMethod,
		Amount:        total,
		Items:         domain.OrderItemsFromLines(lines),
	}, nil
}

// compensate credits the charge back. Every attempt carries the same
// idempotency key, so a credit that was applied but not acknowledged is not
// applied again by the retry.
func (o *Orchestrator) compensate(ctx context.Context, log *slog.Logger, checkoutID, ownerID string, charge domain.Money) error {
	ctx = idempotency.WithKey(ctx, checkoutID+":credit")

	var err error
	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(o.retryDelay)
		}
		if _, err = o.wallet.Credit(ctx, ownerID, charge); err == nil {
			log.Info("wallet debit compensated", "amount", charge.String(), "attempt", attempt)
			return nil
		}
		if !retryable(err) {
			break
		}
		log.Warn("wallet credit failed, retrying", "attempt", attempt, "error", err)
	}

	log.Error("wallet compensation failed", "amount", charge.String(), "error", err)
	return fmt.Errorf("compensate wallet.Credit: %w", err)
}

func (o *Orchestrator) scheduleClear(view *cart.View) <-chan struct{} {
	done := make(chan struct{})
	o.afterFunc(o.cfg.ClearDelay, func() {
		view.Clear()
		close(done)
	})
	return done
}

func (o *Orchestrator) acquire(ownerID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[ownerID]; busy {
		return false
	}
	o.inFlight[ownerID] = struct{}{}
	return true
}

func (o *Orchestrator) release(ownerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, ownerID)
}

type flow struct {
	state State
	log   *slog.Logger
}

func (f *flow) moveTo(next State) error {
	if !f.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, next)
	}
	f.log.Debug("checkout state", "from", f.state, "to", next)
	f.state = next
	return nil
}

func (f *flow) fail() Result {
	f.state = StateIdle
	return Result{State: StateIdle}
}

// cartTotal sums unit price times quantity over the authoritative lines.
func cartTotal(lines []domain.CartLine) (domain.Money, error) {
	if len(lines) == 0 {
		return domain.Money{}, domain.ErrInvalidCartTotal
	}

	cur := lines[0].Price.Currency
	total := decimal.Zero
	for _, l := range lines {
		if l.Price.Currency != cur {
			return domain.Money{}, domain.ErrMixedCurrency
		}
		if l.Quantity <= 0 {
			return domain.Money{}, domain.ErrInvalidCartTotal
		}
		total = total.Add(price.Normalize(l).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if !total.IsPositive() {
		return domain.Money{}, domain.ErrInvalidCartTotal
	}
	return domain.NewMoney(total, cur), nil
}

// chargeFor scales total by multiplier and rounds to the currency's minor
// unit, so the amount debited is exactly the amount a failed submit credits.
func chargeFor(total domain.Money, multiplier decimal.Decimal) (domain.Money, error) {
	if multiplier.IsNegative() {
		return domain.Money{}, domain.ErrInvalidAmount
	}

	charge := total
	if !multiplier.IsZero() {
		charge = domain.NewMoney(total.Amount.Mul(multiplier), total.Currency)
	}
	charge = charge.RoundToMinor()
	if !charge.Amount.IsPositive() {
		return domain.Money{}, domain.ErrInvalidAmount
	}
	return charge, nil
}

// retryable is false for errors that say the credit was refused outright.
func retryable(err error) bool {
	return !domain.IsValidation(err) &&
		!errors.Is(err, domain.ErrNotFound) &&
		!errors.Is(err, domain.ErrInsufficientFunds)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
