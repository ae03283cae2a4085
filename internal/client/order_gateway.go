package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type orderGateway struct {
	c *Client
}

func NewOrderGateway(c *Client) (port.OrderGateway, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return &orderGateway{c: c}, nil
}

func (g *orderGateway) Submit(ctx context.Context, oc domain.OrderContext) (uuid.UUID, error) {
	if oc.OwnerID == "" {
		return uuid.Nil, fmt.Errorf("ownerID is empty")
	}

	var resp httpapi.SubmitOrderResponse
	err := g.c.do(ctx, http.MethodPost, g.c.ownerPath(oc.OwnerID, "orders"), httpapi.SubmitOrderRequestFrom(oc), &resp)
	if err != nil {
		return uuid.Nil, err
	}
	return resp.OrderID, nil
}

func (g *orderGateway) History(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	var resp []httpapi.OrderDTO
	if err := g.c.do(ctx, http.MethodGet, g.c.ownerPath(ownerID, "orders"), nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(resp))
	for _, dto := range resp {
		o, err := httpapi.OrderFromDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("httpapi.OrderFromDTO: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
