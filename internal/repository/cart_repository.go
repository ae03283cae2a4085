package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/db"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartGateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartGateway {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) List(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.ListCartLines(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.ListCartLines: %w", err)
	}

	lines, err := mapCartLinesToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapCartLinesToDomain: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) Create(ctx context.Context, ownerID string, line domain.CartLine) (domain.LineRef, error) {
	if ownerID == "" {
		return domain.LineRef{}, fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(line.Quantity) {
		return domain.LineRef{}, domain.ErrInvalidQuantity
	}

	kind := line.Kind
	if kind == "" {
		kind = domain.KindProduct
	}

	id, err := r.q.CreateCartLine(ctx, db.CreateCartLineParams{
		OwnerID:       ownerID,
		ProductID:     line.ProductID,
		Name:          line.Name,
		Quantity:      int32(line.Quantity),
		PriceAmount:   line.Price.Amount,
		PriceCurrency: line.Price.Currency.String(),
		Kind:          string(kind),
		StoreID:       line.StoreID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.LineRef{}, fmt.Errorf("product[%s]: %w", line.ProductID, domain.ErrConflict)
		}
		return domain.LineRef{}, fmt.Errorf("q.CreateCartLine: %w", err)
	}

	return domain.LineRef{LineID: id.String()}, nil
}

func (r *cartRepository) Update(ctx context.Context, ownerID, lineID string, quantity int, unitPrice domain.Money) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(quantity) {
		return domain.ErrInvalidQuantity
	}

	id, err := parseLineID(lineID)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.UpdateCartLine(ctx, db.UpdateCartLineParams{
		OwnerID:       ownerID,
		ID:            id,
		Quantity:      int32(quantity),
		PriceAmount:   unitPrice.Amount,
		PriceCurrency: unitPrice.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("q.UpdateCartLine: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("line[%s]: %w", lineID, domain.ErrNotFound)
	}

	return nil
}

func (r *cartRepository) Delete(ctx context.Context, ownerID, lineID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	id, err := parseLineID(lineID)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.DeleteCartLine(ctx, db.DeleteCartLineParams{
		OwnerID: ownerID,
		ID:      id,
	})
	if err != nil {
		return fmt.Errorf("q.DeleteCartLine: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("line[%s]: %w", lineID, domain.ErrNotFound)
	}

	return nil
}

// parseLineID treats ids this store could never have issued as missing lines.
func parseLineID(lineID string) (uuid.UUID, error) {
	id, err := uuid.Parse(lineID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("line[%s]: %w", lineID, errors.Join(domain.ErrNotFound, err))
	}
	return id, nil
}

func parseCurrency(s string) (currency.Unit, error) {
	parsed, err := currency.ParseISO(s)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", s, err)
	}
	return parsed, nil
}

func mapCartLineToDomain(row db.CartLine) (domain.CartLine, error) {
	parsedCurrency, err := parseCurrency(row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, err
	}

	return domain.CartLine{
		LineID:    row.ID.String(),
		ProductID: row.ProductID,
		Name:      row.Name,
		Quantity:  int(row.Quantity),
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Kind:      domain.LineKind(row.Kind),
		StoreID:   row.StoreID,
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapCartLinesToDomain(rows []db.CartLine) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, row := range rows {
		line, err := mapCartLineToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartLineToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}
