package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type walletHandler struct {
	wallets port.WalletAccounts
	idem    port.IdempotencyStore
}

type moveFunc func(ctx context.Context, ownerID string, amount domain.Money) (domain.Money, error)

func (h *walletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.wallets.Balance(r.Context(), ownerParam(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, balanceResponse(balance))
}

func (h *walletHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cur, err := parseCurrency(req.Currency)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	balance := domain.NewMoney(req.Balance, cur)
	if err := h.wallets.Open(r.Context(), ownerParam(r), balance); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, balanceResponse(balance))
}

func (h *walletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "debit", h.wallets.Debit)
}

func (h *walletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "credit", h.wallets.Credit)
}

// move applies a debit or credit. With an Idempotency-Key header the first
// successful response is stored and replayed to every retry of the key.
func (h *walletHandler) move(w http.ResponseWriter, r *http.Request, op string, apply moveFunc) {
	var req AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cur, err := parseCurrency(req.Currency)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	owner := ownerParam(r)
	amount := domain.NewMoney(req.Amount, cur)

	key := r.Header.Get(idempotency.Header)
	if key == "" || h.idem == nil {
		balance, err := apply(ctx, owner, amount)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, balanceResponse(balance))
		return
	}

	scope := op + ":" + owner
	stored, found, err := h.idem.Recall(ctx, scope, key)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(stored))
		return
	}

	locked, err := h.idem.TryLock(ctx, scope, key)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !locked {
		respondError(w, r, http.StatusConflict, CodeRequestInProgress, "request with this idempotency key is in progress")
		return
	}

	// the outcome must be recorded even when the caller has given up
	detached := context.WithoutCancel(ctx)

	balance, err := apply(ctx, owner, amount)
	if err != nil {
		if uerr := h.idem.Unlock(detached, scope, key); uerr != nil {
			logFrom(r).Warn("idempotency unlock failed", "key", key, "error", uerr)
		}
		respondDomainError(w, r, err)
		return
	}

	resp := balanceResponse(balance)
	body, err := json.Marshal(resp)
	if err == nil {
		err = h.idem.Remember(detached, scope, key, string(body))
	}
	if err != nil {
		logFrom(r).Warn("idempotency remember failed", "key", key, "error", err)
	}

	respondJSON(w, r, http.StatusOK, resp)
}

func balanceResponse(m domain.Money) BalanceResponse {
	return BalanceResponse{Balance: m.Amount, Currency: m.Currency.String()}
}
