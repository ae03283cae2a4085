package port

import (
	"context"

	"github.com/nikolayk812/cartcheckout/internal/domain"
)

// CartGateway is the authoritative cart store. Create returns an error
// matching domain.ErrConflict when the owner already has a line for the
// product.
type CartGateway interface {
	List(ctx context.Context, ownerID string) ([]domain.CartLine, error)
	Create(ctx context.Context, ownerID string, line domain.CartLine) (domain.LineRef, error)
	Update(ctx context.Context, ownerID, lineID string, quantity int, unitPrice domain.Money) error
	Delete(ctx context.Context, ownerID, lineID string) error
}
