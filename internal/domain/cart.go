package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// MaxQuantity is the largest quantity a cart line or order item can hold.
const MaxQuantity = math.MaxInt32

type LineKind string

const (
	KindProduct LineKind = "product"
	KindService LineKind = "service"
)

// CartLine is one quantity-bearing entry of a cart. Lines without an
// authoritative LineID exist only in the local view.
type CartLine struct {
	LineID    string
	Local     bool
	ProductID uuid.UUID
	Name      string
	Quantity  int
	Price     Money
	Kind      LineKind
	StoreID   string

	CreatedAt time.Time
}

func (l CartLine) IsAuthoritative() bool {
	return l.LineID != "" && !l.Local
}

func (l CartLine) ShowsQuantityControls() bool {
	return l.Kind != KindService
}

func (l CartLine) Subtotal() Money {
	return l.Price.Mul(l.Quantity)
}

type LineRef struct {
	LineID string
}

// Product is the catalog-side value a UI passes to add-to-cart. Price is the
// explicit numeric price when the catalog has one; DisplayPrice is the
// formatted string otherwise.
type Product struct {
	ID           uuid.UUID
	Name         string
	Price        *decimal.Decimal
	DisplayPrice string
	Currency     currency.Unit
	Kind         LineKind
	StoreID      string
}

func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxQuantity
}

func ItemCount(lines []CartLine) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
