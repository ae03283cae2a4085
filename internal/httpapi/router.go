// Package httpapi serves the authoritative cart, order, wallet and profile
// stores over HTTP.
package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Carts    port.CartGateway
	Orders   port.OrderGateway
	Wallets  port.WalletAccounts
	Profiles port.ProfileStore
	Log      *slog.Logger

	// Idempotency is optional; without it Idempotency-Key headers are ignored.
	Idempotency port.IdempotencyStore

	// Storefront is optional; without it only the store endpoints are served.
	Storefront *Storefront

	RequestTimeout time.Duration
}

func NewRouter(d Deps) (http.Handler, error) {
	if d.Carts == nil || d.Orders == nil || d.Wallets == nil || d.Profiles == nil {
		return nil, fmt.Errorf("http api dependencies must not be nil")
	}
	if d.Storefront != nil && (d.Storefront.Shop == nil || d.Storefront.Resolver == nil) {
		return nil, fmt.Errorf("storefront dependencies must not be nil")
	}
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}

	cart := &cartHandler{carts: d.Carts}
	order := &orderHandler{orders: d.Orders}
	wallet := &walletHandler{wallets: d.Wallets, idem: d.Idempotency}
	profile := &profileHandler{profiles: d.Profiles}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/owners/{owner}", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.List)
			r.Post("/lines", cart.Create)
			r.Put("/lines/{line}", cart.Update)
			r.Delete("/lines/{line}", cart.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", order.History)
			r.Post("/", order.Submit)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", wallet.Balance)
			r.Put("/", wallet.Open)
			r.Post("/debit", wallet.Debit)
			r.Post("/credit", wallet.Credit)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profile.Get)
			r.Put("/", profile.Save)
		})
	})

	if d.Storefront != nil {
		r.Route("/api/v1/storefront", d.Storefront.routes)
	}

	return otelhttp.NewHandler(r, "cartstore"), nil
}

func ownerParam(r *http.Request) string {
	return chi.URLParam(r, "owner")
}
