// Package session resolves who owns the cart for a request: the authenticated
// account when there is one, otherwise a guest id bound to the device.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type accountKey struct{}

// WithAccount marks ctx as authenticated for accountID.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey{}, accountID)
}

func AccountFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountKey{}).(string)
	return id, ok && id != ""
}

type Resolver struct {
	guests port.GuestStore
	log    *slog.Logger
	newID  func() string
}

func NewResolver(guests port.GuestStore, log *slog.Logger) (*Resolver, error) {
	if guests == nil {
		return nil, fmt.Errorf("guest store is nil")
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Resolver{
		guests: guests,
		log:    log,
		newID:  func() string { return uuid.NewString() },
	}, nil
}

// Resolve returns the owner for the request. A device without a stored guest
// id gets a fresh one, persisted so later requests resolve to the same cart.
// Concurrent first requests from one device resolve to the same guest.
func (r *Resolver) Resolve(ctx context.Context, deviceID string) (domain.Owner, error) {
	if id, ok := AccountFrom(ctx); ok {
		return domain.Owner{ID: id}, nil
	}

	if deviceID == "" {
		return domain.Owner{}, fmt.Errorf("deviceID is empty")
	}

	guestID, found, err := r.guests.GuestID(ctx, deviceID)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("guests.GuestID: %w", err)
	}
	if found {
		return domain.Owner{ID: guestID, Guest: true}, nil
	}

	candidate := r.newID()
	guestID, err = r.guests.BindGuestID(ctx, deviceID, candidate)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("guests.BindGuestID: %w", err)
	}
	if guestID == candidate {
		r.log.Info("guest owner created", "device_id", deviceID, "owner_id", guestID)
	}

	return domain.Owner{ID: guestID, Guest: true}, nil
}
