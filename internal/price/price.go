// Package price extracts unit prices from the loosely typed price
// representations found on catalog products and cart lines.
package price

import (
	"math"
	"math/big"
	"strings"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var DefaultCurrency = currency.USD

// Normalize returns a non-negative unit price for v. It never panics: values
// that carry no usable price normalize to zero.
func Normalize(v any) decimal.Decimal {
	switch p := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return nonNegative(p)
	case *decimal.Decimal:
		if p == nil {
			return decimal.Zero
		}
		return nonNegative(*p)
	case domain.Money:
		return nonNegative(p.Amount)
	case domain.Product:
		if p.Price != nil {
			return nonNegative(*p.Price)
		}
		return FromDisplay(p.DisplayPrice)
	case *domain.Product:
		if p == nil {
			return decimal.Zero
		}
		return Normalize(*p)
	case domain.CartLine:
		return nonNegative(p.Price.Amount)
	case *domain.CartLine:
		if p == nil {
			return decimal.Zero
		}
		return nonNegative(p.Price.Amount)
	case string:
		return FromDisplay(p)
	case *string:
		if p == nil {
			return decimal.Zero
		}
		return FromDisplay(*p)
	case float64:
		return fromFloat(p)
	case float32:
		return fromFloat(float64(p))
	case int:
		return nonNegative(decimal.NewFromInt(int64(p)))
	case int32:
		return nonNegative(decimal.NewFromInt32(p))
	case int64:
		return nonNegative(decimal.NewFromInt(p))
	case uint:
		return fromUint(uint64(p))
	case uint32:
		return fromUint(uint64(p))
	case uint64:
		return fromUint(p)
	default:
		return decimal.Zero
	}
}

// FromDisplay parses a formatted price such as "₿ 12.50" or "$1,299.00" by
// dropping every character that is neither a digit nor a decimal point.
func FromDisplay(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return nonNegative(d)
}

// Money normalizes the price of p and pairs it with the product currency.
func Money(p domain.Product) domain.Money {
	cur := p.Currency
	if cur == (currency.Unit{}) {
		cur = DefaultCurrency
	}
	return domain.NewMoney(Normalize(p), cur)
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return nonNegative(decimal.NewFromFloat(f))
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
