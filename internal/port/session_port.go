package port

import (
	"context"

	"github.com/nikolayk812/cartcheckout/internal/domain"
)

type ProfileProvider interface {
	GetProfile(ctx context.Context, ownerID string) (domain.Profile, error)
}

// GuestStore binds devices to guest owner ids. BindGuestID stores guestID
// only when the device has no binding yet and returns the id that is bound
// afterwards, so concurrent first requests agree on one owner.
type GuestStore interface {
	GuestID(ctx context.Context, deviceID string) (string, bool, error)
	BindGuestID(ctx context.Context, deviceID, guestID string) (string, error)
}

// Preferences are values remembered on the device between sessions.
type Preferences interface {
	Remembered(ctx context.Context, ownerID string) (domain.Remembered, error)
	Remember(ctx context.Context, ownerID string, r domain.Remembered) error
}

type ProfileStore interface {
	ProfileProvider
	SaveProfile(ctx context.Context, p domain.Profile) error
}
