package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type profiles struct {
	c *Client
}

func NewProfiles(c *Client) (port.ProfileStore, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return &profiles{c: c}, nil
}

func (p *profiles) GetProfile(ctx context.Context, ownerID string) (domain.Profile, error) {
	if ownerID == "" {
		return domain.Profile{}, fmt.Errorf("ownerID is empty")
	}

	var resp httpapi.ProfileDTO
	if err := p.c.do(ctx, http.MethodGet, p.c.ownerPath(ownerID, "profile"), nil, &resp); err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		OwnerID: ownerID,
		Name:    resp.Name,
		Email:   resp.Email,
		Phone:   resp.Phone,
		Address: resp.Address,
	}, nil
}

func (p *profiles) SaveProfile(ctx context.Context, profile domain.Profile) error {
	if profile.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	req := httpapi.ProfileDTO{
		Name:    profile.Name,
		Email:   profile.Email,
		Phone:   profile.Phone,
		Address: profile.Address,
	}
	return p.c.do(ctx, http.MethodPut, p.c.ownerPath(profile.OwnerID, "profile"), req, nil)
}
