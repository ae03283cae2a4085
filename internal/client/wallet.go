package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"golang.org/x/text/currency"
)

type wallet struct {
	c *Client
}

func NewWallet(c *Client) (port.WalletAccounts, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return &wallet{c: c}, nil
}

func (w *wallet) Balance(ctx context.Context, ownerID string) (domain.Money, error) {
	if ownerID == "" {
		return domain.Money{}, fmt.Errorf("ownerID is empty")
	}

	var resp httpapi.BalanceResponse
	if err := w.c.do(ctx, http.MethodGet, w.c.ownerPath(ownerID, "wallet"), nil, &resp); err != nil {
		return domain.Money{}, err
	}
	return balanceToDomain(resp)
}

func (w *wallet) Open(ctx context.Context, ownerID string, balance domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	req := httpapi.OpenWalletRequest{Balance: balance.Amount, Currency: balance.Currency.String()}
	return w.c.do(ctx, http.MethodPut, w.c.ownerPath(ownerID, "wallet"), req, nil)
}

// Debit and Credit send the idempotency key of ctx, if any, so a retry of a
// request that was applied but timed out is not applied twice.
func (w *wallet) Debit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	return w.move(ctx, ownerID, "debit", amount)
}

func (w *wallet) Credit(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error) {
	return w.move(ctx, ownerID, "credit", amount)
}

func (w *wallet) move(ctx context.Context, ownerID, op string, amount domain.Money) (domain.Money, error) {
	if ownerID == "" {
		return domain.Money{}, fmt.Errorf("ownerID is empty")
	}

	req := httpapi.AmountRequest{Amount: amount.Amount, Currency: amount.Currency.String()}

	var resp httpapi.BalanceResponse
	err := w.c.do(ctx, http.MethodPost, w.c.ownerPath(ownerID, "wallet", op), req, &resp)
	if err != nil {
		return domain.Money{}, err
	}
	return balanceToDomain(resp)
}

func balanceToDomain(resp httpapi.BalanceResponse) (domain.Money, error) {
	cur, err := currency.ParseISO(resp.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency.ParseISO: %w", err)
	}
	return domain.NewMoney(resp.Balance, cur), nil
}
