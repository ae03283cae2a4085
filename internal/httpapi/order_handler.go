package httpapi

import (
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/port"
)

type orderHandler struct {
	orders port.OrderGateway
}

func (h *orderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	oc, err := req.toDomain(ownerParam(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	id, err := h.orders.Submit(r.Context(), oc)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, SubmitOrderResponse{OrderID: id})
}

func (h *orderHandler) History(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.History(r.Context(), ownerParam(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, OrderToDTO(o))
	}
	respondJSON(w, r, http.StatusOK, resp)
}
