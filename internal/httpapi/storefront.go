package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/checkout"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/session"
	"github.com/nikolayk812/cartcheckout/internal/shop"
	"github.com/shopspring/decimal"
)

const (
	HeaderDeviceID  = "X-Device-ID"
	HeaderAccountID = "X-Account-ID"
)

// Storefront serves device-facing cart and checkout endpoints on top of
// shop sessions. The owner is the account from X-Account-ID when present,
// otherwise the guest bound to X-Device-ID.
type Storefront struct {
	Shop     *shop.Shop
	Resolver *session.Resolver
}

type AddItemRequest struct {
	ProductID    uuid.UUID        `json:"product_id"`
	Name         string           `json:"name"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	DisplayPrice string           `json:"display_price,omitempty"`
	Currency     string           `json:"currency"`
	Kind         string           `json:"kind,omitempty"`
	StoreID      string           `json:"store_id,omitempty"`
	Quantity     int              `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type StorefrontCartResponse struct {
	OwnerID   string        `json:"owner_id"`
	Guest     bool          `json:"guest"`
	ItemCount int           `json:"item_count"`
	Lines     []CartLineDTO `json:"lines"`
	// Outcome is set on mutations: synced, merged or degraded.
	Outcome string `json:"outcome,omitempty"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method,omitempty"`
}

type CheckoutResponse struct {
	Order   OrderDTO        `json:"order"`
	Charged decimal.Decimal `json:"charged"`
	Balance decimal.Decimal `json:"balance"`
	State   string          `json:"state"`
}

type sessionKey struct{}

func (s *Storefront) routes(r chi.Router) {
	r.Use(s.withSession)

	r.Get("/cart", s.cart)
	r.Post("/cart/items", s.addItem)
	r.Put("/cart/items/{line}", s.updateItem)
	r.Delete("/cart/items/{line}", s.removeItem)
	r.Post("/checkout", s.checkout)
}

func (s *Storefront) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if account := r.Header.Get(HeaderAccountID); account != "" {
			ctx = session.WithAccount(ctx, account)
		}

		device := r.Header.Get(HeaderDeviceID)
		if device == "" {
			if _, ok := session.AccountFrom(ctx); !ok {
				respondError(w, r, http.StatusBadRequest, CodeInvalidRequest, HeaderDeviceID+" header is required")
				return
			}
		}

		owner, err := s.Resolver.Resolve(ctx, device)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		sess, err := s.Shop.Session(ctx, owner)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *shop.Session {
	return r.Context().Value(sessionKey{}).(*shop.Session)
}

func (s *Storefront) cart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Refresh(r.Context()); err != nil {
		logFrom(r).Warn("storefront cart refresh failed, serving local view", "error", err)
	}
	respondJSON(w, r, http.StatusOK, cartView(sess, ""))
}

func (s *Storefront) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) || !checkQuantity(w, r, req.Quantity) {
		return
	}

	cur, err := parseCurrency(req.Currency)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	sess := sessionFrom(r)
	outcome, err := sess.AddToCart(r.Context(), domain.Product{
		ID:           req.ProductID,
		Name:         req.Name,
		Price:        req.Price,
		DisplayPrice: req.DisplayPrice,
		Currency:     cur,
		Kind:         domain.LineKind(req.Kind),
		StoreID:      req.StoreID,
	}, req.Quantity)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, cartView(sess, outcome.String()))
}

func (s *Storefront) updateItem(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if !decodeJSON(w, r, &req) || !checkQuantity(w, r, req.Quantity) {
		return
	}

	sess := sessionFrom(r)
	outcome, err := sess.UpdateQuantity(r.Context(), chi.URLParam(r, "line"), req.Quantity)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, cartView(sess, outcome.String()))
}

func (s *Storefront) removeItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	outcome, err := sess.RemoveLine(r.Context(), chi.URLParam(r, "line"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, cartView(sess, outcome.String()))
}

func (s *Storefront) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	res, err := sessionFrom(r).Checkout(r.Context(), req.PaymentMethod)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutInProgress) {
			respondError(w, r, http.StatusConflict, CodeCheckoutInProgress, err.Error())
			return
		}
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, checkoutResponse(res))
}

func cartView(sess *shop.Session, outcome string) StorefrontCartResponse {
	lines := sess.Lines()
	resp := StorefrontCartResponse{
		OwnerID:   sess.Owner().ID,
		Guest:     sess.Owner().Guest,
		ItemCount: sess.ItemCount(),
		Lines:     make([]CartLineDTO, 0, len(lines)),
		Outcome:   outcome,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, CartLineToDTO(l))
	}
	return resp
}

func checkoutResponse(res checkout.Result) CheckoutResponse {
	return CheckoutResponse{
		Order:   OrderToDTO(res.Order),
		Charged: res.Charged.Amount,
		Balance: res.Balance.Amount,
		State:   res.State.String(),
	}
}
