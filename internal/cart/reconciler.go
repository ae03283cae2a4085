// Package cart keeps the local cart view consistent with the authoritative
// cart store.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/price"
	"golang.org/x/sync/singleflight"
)

// Outcome reports how a cart mutation was applied.
type Outcome int

const (
	// Synced means the store accepted the mutation and the view was refreshed.
	Synced Outcome = iota
	// Merged means an add hit an existing line and its quantity was bumped.
	Merged
	// Degraded means the store was unreachable and only the view changed.
	// Refusals by the store (validation, not found) never degrade.
	Degraded
)

func (o Outcome) String() string {
	switch o {
	case Synced:
		return "synced"
	case Merged:
		return "merged"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

type Reconciler struct {
	ownerID string
	gw      port.CartGateway
	view    *View
	log     *slog.Logger
	now     func() time.Time
	sfg     singleflight.Group
}

type Option func(*Reconciler)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.log = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

func NewReconciler(ownerID string, gw port.CartGateway, view *View, opts ...Option) (*Reconciler, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if view == nil {
		view = NewView()
	}

	r := &Reconciler{
		ownerID: ownerID,
		gw:      gw,
		view:    view,
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("owner_id", ownerID)

	return r, nil
}

func (r *Reconciler) View() *View {
	return r.view
}

// Add puts quantity units of product into the cart. Adding a product that
// already has a line accumulates onto that line and keeps its price.
func (r *Reconciler) Add(ctx context.Context, product domain.Product, quantity int) (Outcome, error) {
	if !domain.ValidQuantity(quantity) {
		return Synced, domain.ErrInvalidQuantity
	}

	draft := domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  quantity,
		Price:     price.Money(product),
		Kind:      kindOf(product),
		StoreID:   product.StoreID,
		CreatedAt: r.now(),
	}

	ref, err := r.gw.Create(ctx, r.ownerID, draft)
	if err == nil {
		draft.LineID = ref.LineID
		r.view.merge(draft)
		r.refreshAfterMutation(ctx, "add")
		return Synced, nil
	}

	if errors.Is(err, domain.ErrConflict) || isAlreadyExistsText(err) {
		err = r.bump(ctx, draft)
		if err == nil {
			return Merged, nil
		}
	}

	if !unreachable(err) {
		if errors.Is(err, domain.ErrNotFound) {
			r.refreshAfterMutation(ctx, "add")
		}
		return Synced, err
	}

	line := r.view.addLocal(draft, r.now())
	r.log.Warn("cart add degraded to local view",
		"product_id", product.ID, "line_id", line.LineID, "quantity", line.Quantity, "error", err)
	return Degraded, nil
}

// bump resolves the existing line for draft's product and adds draft's
// quantity to it.
func (r *Reconciler) bump(ctx context.Context, draft domain.CartLine) error {
	existing, ok := r.view.authoritativeLine(draft.ProductID)
	if !ok {
		lines, err := r.gw.List(ctx, r.ownerID)
		if err != nil {
			return fmt.Errorf("gw.List: %w", err)
		}
		existing, ok = findProduct(lines, draft.ProductID)
		if !ok {
			return fmt.Errorf("conflict reported for product[%s] but no line found: %w", draft.ProductID, domain.ErrNotFound)
		}
	}

	unitPrice := draft.Price
	if !existing.Price.IsZero() {
		unitPrice = existing.Price
	}
	next := existing.Quantity + draft.Quantity
	if !domain.ValidQuantity(next) {
		return domain.ErrInvalidQuantity
	}

	if err := r.gw.Update(ctx, r.ownerID, existing.LineID, next, unitPrice); err != nil {
		return fmt.Errorf("gw.Update: %w", err)
	}

	r.refreshAfterMutation(ctx, "add")
	return nil
}

// UpdateQuantity sets the quantity of a line. A line the store no longer has
// is dropped from the view by a refresh and reported as domain.ErrNotFound.
func (r *Reconciler) UpdateQuantity(ctx context.Context, lineID string, quantity int) (Outcome, error) {
	if !domain.ValidQuantity(quantity) {
		return Synced, domain.ErrInvalidQuantity
	}

	line, ok := r.view.Find(lineID)
	if !ok {
		return Synced, fmt.Errorf("line[%s]: %w", lineID, domain.ErrNotFound)
	}
	if !line.IsAuthoritative() {
		r.view.setQuantity(lineID, quantity)
		return Degraded, nil
	}

	unitPrice := domain.NewMoney(price.Normalize(line), line.Price.Currency)

	if err := r.gw.Update(ctx, r.ownerID, lineID, quantity, unitPrice); err != nil {
		if !unreachable(err) {
			if errors.Is(err, domain.ErrNotFound) {
				r.refreshAfterMutation(ctx, "update")
			}
			return Synced, fmt.Errorf("gw.Update: %w", err)
		}
		r.view.setQuantity(lineID, quantity)
		r.log.Warn("cart update degraded to local view", "line_id", lineID, "quantity", quantity, "error", err)
		return Degraded, nil
	}

	r.refreshAfterMutation(ctx, "update")
	return Synced, nil
}

func (r *Reconciler) Remove(ctx context.Context, lineID string) (Outcome, error) {
	line, ok := r.view.Find(lineID)
	if ok && !line.IsAuthoritative() {
		r.view.remove(lineID)
		return Degraded, nil
	}

	err := r.gw.Delete(ctx, r.ownerID, lineID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		if !unreachable(err) {
			return Synced, fmt.Errorf("gw.Delete: %w", err)
		}
		r.view.remove(lineID)
		r.log.Warn("cart remove degraded to local view", "line_id", lineID, "error", err)
		return Degraded, nil
	}

	r.refreshAfterMutation(ctx, "remove")
	return Synced, nil
}

// Refresh replaces the view with the authoritative cart.
func (r *Reconciler) Refresh(ctx context.Context) error {
	v, err, _ := r.sfg.Do(r.ownerID, func() (interface{}, error) {
		return r.gw.List(ctx, r.ownerID)
	})
	if err != nil {
		return fmt.Errorf("gw.List: %w", err)
	}

	r.view.Replace(v.([]domain.CartLine))
	return nil
}

// refreshAfterMutation keeps the optimistic view when the store accepted a
// write but could not be listed right after.
func (r *Reconciler) refreshAfterMutation(ctx context.Context, op string) {
	if err := r.Refresh(ctx); err != nil {
		r.log.Warn("cart refresh failed", "op", op, "error", err)
	}
}

// unreachable reports whether err means the store could not be asked, as
// opposed to the store refusing the request. Untyped errors come from the
// network layer.
func unreachable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrTransport):
		return true
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientFunds):
		return false
	default:
		return true
	}
}

func findProduct(lines []domain.CartLine, productID uuid.UUID) (domain.CartLine, bool) {
	for _, l := range lines {
		if l.ProductID == productID && l.IsAuthoritative() {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func kindOf(p domain.Product) domain.LineKind {
	if p.Kind == "" {
		return domain.KindProduct
	}
	return p.Kind
}
