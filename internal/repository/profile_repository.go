package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/db"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type profileRepository struct {
	q *db.Queries
}

func NewProfile(pool *pgxpool.Pool) (port.ProfileStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &profileRepository{q: db.New(pool)}, nil
}

func (r *profileRepository) GetProfile(ctx context.Context, ownerID string) (domain.Profile, error) {
	if ownerID == "" {
		return domain.Profile{}, fmt.Errorf("ownerID is empty")
	}

	row, err := r.q.GetOwnerProfile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("profile[%s]: %w", ownerID, domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("q.GetOwnerProfile: %w", err)
	}

	return domain.Profile{
		OwnerID: row.OwnerID,
		Name:    row.Name,
		Email:   row.Email,
		Phone:   row.Phone,
		Address: row.Address,
	}, nil
}

func (r *profileRepository) SaveProfile(ctx context.Context, p domain.Profile) error {
	if p.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	err := r.q.UpsertOwnerProfile(ctx, db.UpsertOwnerProfileParams{
		OwnerID: p.OwnerID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	})
	if err != nil {
		return fmt.Errorf("q.UpsertOwnerProfile: %w", err)
	}

	return nil
}
