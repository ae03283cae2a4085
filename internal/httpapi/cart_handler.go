package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type cartHandler struct {
	carts port.CartGateway
}

func (h *cartHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := ownerParam(r)

	lines, err := h.carts.List(r.Context(), owner)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := CartResponse{OwnerID: owner, Lines: make([]CartLineDTO, 0, len(lines))}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, CartLineToDTO(l))
	}
	respondJSON(w, r, http.StatusOK, resp)
}

func (h *cartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLineRequest
	if !decodeJSON(w, r, &req) || !checkQuantity(w, r, req.Quantity) {
		return
	}

	cur, err := parseCurrency(req.Currency)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.UnitPrice.IsNegative() {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "unit_price must not be negative")
		return
	}

	ref, err := h.carts.Create(r.Context(), ownerParam(r), domain.CartLine{
		ProductID: req.ProductID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Price:     domain.NewMoney(req.UnitPrice, cur),
		Kind:      domain.LineKind(req.Kind),
		StoreID:   req.StoreID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, CreateLineResponse{LineID: ref.LineID})
}

func (h *cartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineRequest
	if !decodeJSON(w, r, &req) || !checkQuantity(w, r, req.Quantity) {
		return
	}

	cur, err := parseCurrency(req.Currency)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	err = h.carts.Update(r.Context(), ownerParam(r), chi.URLParam(r, "line"), req.Quantity, domain.NewMoney(req.UnitPrice, cur))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *cartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Delete(r.Context(), ownerParam(r), chi.URLParam(r, "line")); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
