package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type cartGateway struct {
	c *Client
}

func NewCartGateway(c *Client) (port.CartGateway, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return &cartGateway{c: c}, nil
}

func (g *cartGateway) List(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	var resp httpapi.CartResponse
	if err := g.c.do(ctx, http.MethodGet, g.c.ownerPath(ownerID, "cart"), nil, &resp); err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(resp.Lines))
	for _, dto := range resp.Lines {
		line, err := httpapi.CartLineFromDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("httpapi.CartLineFromDTO: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (g *cartGateway) Create(ctx context.Context, ownerID string, line domain.CartLine) (domain.LineRef, error) {
	if ownerID == "" {
		return domain.LineRef{}, fmt.Errorf("ownerID is empty")
	}

	req := httpapi.CreateLineRequest{
		ProductID: line.ProductID,
		Name:      line.Name,
		Quantity:  line.Quantity,
		UnitPrice: line.Price.Amount,
		Currency:  line.Price.Currency.String(),
		Kind:      string(line.Kind),
		StoreID:   line.StoreID,
	}

	var resp httpapi.CreateLineResponse
	if err := g.c.do(ctx, http.MethodPost, g.c.ownerPath(ownerID, "cart", "lines"), req, &resp); err != nil {
		return domain.LineRef{}, err
	}
	return domain.LineRef{LineID: resp.LineID}, nil
}

func (g *cartGateway) Update(ctx context.Context, ownerID, lineID string, quantity int, unitPrice domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	req := httpapi.UpdateLineRequest{
		Quantity:  quantity,
		UnitPrice: unitPrice.Amount,
		Currency:  unitPrice.Currency.String(),
	}
	return g.c.do(ctx, http.MethodPut, g.c.ownerPath(ownerID, "cart", "lines", url.PathEscape(lineID)), req, nil)
}

func (g *cartGateway) Delete(ctx context.Context, ownerID, lineID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	return g.c.do(ctx, http.MethodDelete, g.c.ownerPath(ownerID, "cart", "lines", url.PathEscape(lineID)), nil, nil)
}
