package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
)

type OrderGateway interface {
	Submit(ctx context.Context, oc domain.OrderContext) (uuid.UUID, error)
	History(ctx context.Context, ownerID string) ([]domain.Order, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}
