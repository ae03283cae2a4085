package httpapi

import (
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type profileHandler struct {
	profiles port.ProfileStore
}

func (h *profileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfile(r.Context(), ownerParam(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, ProfileDTO{Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address})
}

func (h *profileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req ProfileDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profiles.SaveProfile(r.Context(), domain.Profile{
		OwnerID: ownerParam(r),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
