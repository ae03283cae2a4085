// Package wallet holds the in-process wallet balance used when the wallet is
// not persisted remotely.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Memory keeps every balance in one currency. Amounts in any other currency
// are rejected with domain.ErrCurrencyMismatch.
type Memory struct {
	mu       sync.Mutex
	currency currency.Unit
	balances map[string]decimal.Decimal
}

func NewMemory(cur currency.Unit) *Memory {
	return &Memory{
		currency: cur,
		balances: make(map[string]decimal.Decimal),
	}
}

// Set overwrites the balance of ownerID. Used to seed accounts.
func (m *Memory) Set(ownerID string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[ownerID] = amount
}

func (m *Memory) Balance(_ context.Context, ownerID string) (domain.Money, error) {
	if ownerID == "" {
		return domain.Money{}, fmt.Errorf("ownerID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.money(m.balances[ownerID]), nil
}

func (m *Memory) Debit(_ context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	if err := m.validate(ownerID, amount); err != nil {
		return domain.Money{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[ownerID]
	if balance.LessThan(amount.Amount) {
		return m.money(balance), domain.ErrInsufficientFunds
	}

	balance = balance.Sub(amount.Amount)
	m.balances[ownerID] = balance
	return m.money(balance), nil
}

func (m *Memory) Credit(_ context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	if err := m.validate(ownerID, amount); err != nil {
		return domain.Money{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[ownerID].Add(amount.Amount)
	m.balances[ownerID] = balance
	return m.money(balance), nil
}

// Open sets the balance of ownerID.
func (m *Memory) Open(_ context.Context, ownerID string, balance domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if balance.Currency != m.currency {
		return fmt.Errorf("%w: %s wallet, got %s", domain.ErrCurrencyMismatch, m.currency, balance.Currency)
	}
	if balance.Amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	m.Set(ownerID, balance.Amount)
	return nil
}

func (m *Memory) money(amount decimal.Decimal) domain.Money {
	return domain.NewMoney(amount, m.currency)
}

func (m *Memory) validate(ownerID string, amount domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if amount.Currency != m.currency {
		return fmt.Errorf("%w: %s wallet, got %s", domain.ErrCurrencyMismatch, m.currency, amount.Currency)
	}
	if !amount.Amount.IsPositive() || !amount.InMinorUnits() {
		return domain.ErrInvalidAmount
	}
	return nil
}
