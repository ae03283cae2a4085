package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/db"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

const balanceScale = 2

type walletRepository struct {
	q *db.Queries
}

func NewWallet(pool *pgxpool.Pool) (port.WalletAccounts, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &walletRepository{q: db.New(pool)}, nil
}

func (r *walletRepository) Open(ctx context.Context, ownerID string, balance domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if balance.Amount.IsNegative() {
		return domain.ErrInvalidAmount
	}

	err := r.q.UpsertWalletAccount(ctx, db.UpsertWalletAccountParams{
		OwnerID:  ownerID,
		Balance:  balance.Amount,
		Currency: balance.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("q.UpsertWalletAccount: %w", err)
	}

	return nil
}

func (r *walletRepository) Balance(ctx context.Context, ownerID string) (domain.Money, error) {
	if ownerID == "" {
		return domain.Money{}, fmt.Errorf("ownerID is empty")
	}

	row, err := r.q.GetWalletAccount(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Money{}, fmt.Errorf("wallet[%s]: %w", ownerID, domain.ErrNotFound)
		}
		return domain.Money{}, fmt.Errorf("q.GetWalletAccount: %w", err)
	}

	return mapWalletToDomain(row)
}

// Debit is a single conditional update, so a short balance or an account in
// another currency is never touched.
func (r *walletRepository) Debit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	if err := validateAmount(ownerID, amount); err != nil {
		return domain.Money{}, err
	}

	row, err := r.q.DebitWallet(ctx, db.DebitWalletParams{
		Amount:   amount.Amount,
		OwnerID:  ownerID,
		Currency: amount.Currency.String(),
	})
	if err == nil {
		return mapWalletToDomain(row)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Money{}, fmt.Errorf("q.DebitWallet: %w", err)
	}

	// no row updated: no account, another currency or not enough on it
	current, err := r.Balance(ctx, ownerID)
	if err != nil {
		return domain.Money{}, err
	}
	if current.Currency != amount.Currency {
		return current, currencyMismatch(current, amount)
	}
	return current, domain.ErrInsufficientFunds
}

func (r *walletRepository) Credit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	if err := validateAmount(ownerID, amount); err != nil {
		return domain.Money{}, err
	}

	row, err := r.q.CreditWallet(ctx, db.CreditWalletParams{
		Amount:   amount.Amount,
		OwnerID:  ownerID,
		Currency: amount.Currency.String(),
	})
	if err == nil {
		return mapWalletToDomain(row)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Money{}, fmt.Errorf("q.CreditWallet: %w", err)
	}

	current, err := r.Balance(ctx, ownerID)
	if err != nil {
		return domain.Money{}, err
	}
	return current, currencyMismatch(current, amount)
}

// validateAmount rejects amounts the NUMERIC(14,2) balance column would round.
func validateAmount(ownerID string, amount domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if !amount.Amount.IsPositive() || !amount.InMinorUnits() {
		return domain.ErrInvalidAmount
	}
	if !amount.Amount.Equal(amount.Amount.Round(balanceScale)) {
		return domain.ErrInvalidAmount
	}
	return nil
}

func currencyMismatch(account, amount domain.Money) error {
	return fmt.Errorf("%w: %s wallet, got %s", domain.ErrCurrencyMismatch, account.Currency, amount.Currency)
}

func mapWalletToDomain(row db.WalletAccount) (domain.Money, error) {
	parsedCurrency, err := parseCurrency(row.Currency)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.Money{Amount: row.Balance, Currency: parsedCurrency}, nil
}
