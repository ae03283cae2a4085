package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/db"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) (port.OrderGateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewOrderWithTx(tx pgx.Tx) port.OrderGateway {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil,
	}
}

// Submit writes the order header and its items and removes the ordered
// products from the owner's cart, all in one transaction.
func (r *orderRepository) Submit(ctx context.Context, oc domain.OrderContext) (uuid.UUID, error) {
	if oc.OwnerID == "" {
		return uuid.Nil, fmt.Errorf("ownerID is empty")
	}
	if len(oc.Items) == 0 {
		return uuid.Nil, domain.ErrEmptyCart
	}
	if !oc.Amount.Amount.IsPositive() {
		return uuid.Nil, domain.ErrInvalidCartTotal
	}

	orderID := uuid.New()

	return withTx(ctx, r.pool, r.q, submitTxOptions, func(q *db.Queries) (uuid.UUID, error) {
		err := q.InsertOrder(ctx, db.InsertOrderParams{
			ID:             orderID,
			OwnerID:        oc.OwnerID,
			Amount:         oc.Amount.Amount,
			Currency:       oc.Amount.Currency.String(),
			PaymentMethod:  oc.PaymentMethod,
			Status:         string(domain.OrderStatusPending),
			StoreID:        oc.StoreID,
			ContactName:    oc.Contact.Name,
			ContactEmail:   oc.Contact.Email,
			ContactPhone:   oc.Contact.Phone,
			ContactAddress: oc.Contact.Address,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", err)
		}

		productIDs := make([]uuid.UUID, 0, len(oc.Items))
		for i, item := range oc.Items {
			if !domain.ValidQuantity(item.Quantity) {
				return uuid.Nil, domain.ErrInvalidQuantity
			}
			productIDs = append(productIDs, item.ProductID)

			err := q.InsertOrderItem(ctx, db.InsertOrderItemParams{
				OrderID:       orderID,
				Position:      int32(i),
				ProductID:     item.ProductID,
				Name:          item.Name,
				Quantity:      int32(item.Quantity),
				PriceAmount:   item.UnitPrice.Amount,
				PriceCurrency: item.UnitPrice.Currency.String(),
				Kind:          string(item.Kind),
			})
			if err != nil {
				return uuid.Nil, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
		}

		// lines added after the checkout snapshot stay in the cart
		_, err = q.DeleteCartLinesByProducts(ctx, db.DeleteCartLinesByProductsParams{
			OwnerID:    oc.OwnerID,
			ProductIds: productIDs,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("q.DeleteCartLinesByProducts: %w", err)
		}

		return orderID, nil
	})
}

// History returns the owner's orders, newest first.
func (r *orderRepository) History(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	orderRows, err := r.q.ListOrders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}
	if len(orderRows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(orderRows))
	for _, row := range orderRows {
		ids = append(ids, row.ID)
	}

	itemRows, err := r.q.ListOrderItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrderItems: %w", err)
	}

	items := make(map[uuid.UUID][]domain.OrderItem, len(orderRows))
	for _, row := range itemRows {
		item, err := mapOrderItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapOrderItemToDomain: %w", err)
		}
		items[row.OrderID] = append(items[row.OrderID], item)
	}

	orders := make([]domain.Order, 0, len(orderRows))
	for _, row := range orderRows {
		order, err := mapOrderToDomain(row, items[row.ID])
		if err != nil {
			return nil, fmt.Errorf("mapOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func mapOrderToDomain(row db.Order, items []domain.OrderItem) (domain.Order, error) {
	parsedCurrency, err := parseCurrency(row.Currency)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		Amount:        domain.Money{Amount: row.Amount, Currency: parsedCurrency},
		PaymentMethod: row.PaymentMethod,
		Status:        domain.OrderStatus(row.Status),
		StoreID:       row.StoreID,
		Contact: domain.Contact{
			Name:    row.ContactName,
			Email:   row.ContactEmail,
			Phone:   row.ContactPhone,
			Address: row.ContactAddress,
		},
		Items:     items,
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapOrderItemToDomain(row db.OrderItem) (domain.OrderItem, error) {
	parsedCurrency, err := parseCurrency(row.PriceCurrency)
	if err != nil {
		return domain.OrderItem{}, err
	}

	return domain.OrderItem{
		ProductID: row.ProductID,
		Name:      row.Name,
		Quantity:  int(row.Quantity),
		UnitPrice: domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Kind:      domain.LineKind(row.Kind),
	}, nil
}
