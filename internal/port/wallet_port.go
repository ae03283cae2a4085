package port

import (
	"context"

	"github.com/nikolayk812/cartcheckout/internal/domain"
)

// Wallet is a single mutable balance per owner. Debit fails with
// domain.ErrInsufficientFunds without changing the balance. Amounts in a
// currency other than the account's fail with domain.ErrCurrencyMismatch.
type Wallet interface {
	Balance(ctx context.Context, ownerID string) (domain.Money, error)
	Debit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error)
	Credit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error)
}

// WalletAccounts is the wallet store side that can also open accounts.
type WalletAccounts interface {
	Wallet
	Open(ctx context.Context, ownerID string, balance domain.Money) error
}

// IdempotencyStore remembers the outcome of keyed requests so a retried
// request replays the first response instead of running twice.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
