package httpapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CartLineDTO struct {
	LineID    string          `json:"line_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Kind      string          `json:"kind"`
	StoreID   string          `json:"store_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type CartResponse struct {
	OwnerID string        `json:"owner_id"`
	Lines   []CartLineDTO `json:"lines"`
}

type CreateLineRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Kind      string          `json:"kind,omitempty"`
	StoreID   string          `json:"store_id,omitempty"`
}

type CreateLineResponse struct {
	LineID string `json:"line_id"`
}

type UpdateLineRequest struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

type ContactDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Kind      string          `json:"kind"`
}

type SubmitOrderRequest struct {
	StoreID       string          `json:"store_id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Contact       ContactDTO      `json:"contact"`
	Items         []OrderItemDTO  `json:"items"`
}

type SubmitOrderResponse struct {
	OrderID uuid.UUID `json:"order_id"`
}

type OrderDTO struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	StoreID       string          `json:"store_id"`
	Contact       ContactDTO      `json:"contact"`
	Items         []OrderItemDTO  `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AmountRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type OpenWalletRequest struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type ProfileDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func parseCurrency(s string) (currency.Unit, error) {
	cur, err := currency.ParseISO(s)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: currency[%s] is not valid", domain.ErrValidation, s)
	}
	return cur, nil
}

func CartLineToDTO(l domain.CartLine) CartLineDTO {
	return CartLineDTO{
		LineID:    l.LineID,
		ProductID: l.ProductID,
		Name:      l.Name,
		Quantity:  l.Quantity,
		UnitPrice: l.Price.Amount,
		Currency:  l.Price.Currency.String(),
		Kind:      string(l.Kind),
		StoreID:   l.StoreID,
		CreatedAt: l.CreatedAt,
	}
}

func CartLineFromDTO(d CartLineDTO) (domain.CartLine, error) {
	cur, err := parseCurrency(d.Currency)
	if err != nil {
		return domain.CartLine{}, err
	}

	return domain.CartLine{
		LineID:    d.LineID,
		ProductID: d.ProductID,
		Name:      d.Name,
		Quantity:  d.Quantity,
		Price:     domain.NewMoney(d.UnitPrice, cur),
		Kind:      domain.LineKind(d.Kind),
		StoreID:   d.StoreID,
		CreatedAt: d.CreatedAt,
	}, nil
}

func OrderItemToDTO(i domain.OrderItem) OrderItemDTO {
	return OrderItemDTO{
		ProductID: i.ProductID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice.Amount,
		Currency:  i.UnitPrice.Currency.String(),
		Kind:      string(i.Kind),
	}
}

func OrderItemFromDTO(d OrderItemDTO) (domain.OrderItem, error) {
	cur, err := parseCurrency(d.Currency)
	if err != nil {
		return domain.OrderItem{}, err
	}

	return domain.OrderItem{
		ProductID: d.ProductID,
		Name:      d.Name,
		Quantity:  d.Quantity,
		UnitPrice: domain.NewMoney(d.UnitPrice, cur),
		Kind:      domain.LineKind(d.Kind),
	}, nil
}

func OrderToDTO(o domain.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, OrderItemToDTO(i))
	}

	return OrderDTO{
		ID:            o.ID,
		OwnerID:       o.OwnerID,
		Amount:        o.Amount.Amount,
		Currency:      o.Amount.Currency.String(),
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		StoreID:       o.StoreID,
		Contact:       ContactDTO(o.Contact),
		Items:         items,
		CreatedAt:     o.CreatedAt,
	}
}

func OrderFromDTO(d OrderDTO) (domain.Order, error) {
	cur, err := parseCurrency(d.Currency)
	if err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, di := range d.Items {
		item, err := OrderItemFromDTO(di)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}

	return domain.Order{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Amount:        domain.NewMoney(d.Amount, cur),
		PaymentMethod: d.PaymentMethod,
		Status:        domain.OrderStatus(d.Status),
		StoreID:       d.StoreID,
		Contact:       domain.Contact(d.Contact),
		Items:         items,
		CreatedAt:     d.CreatedAt,
	}, nil
}

func SubmitOrderRequestFrom(oc domain.OrderContext) SubmitOrderRequest {
	items := make([]OrderItemDTO, 0, len(oc.Items))
	for _, i := range oc.Items {
		items = append(items, OrderItemToDTO(i))
	}

	return SubmitOrderRequest{
		StoreID:       oc.StoreID,
		PaymentMethod: oc.PaymentMethod,
		Amount:        oc.Amount.Amount,
		Currency:      oc.Amount.Currency.String(),
		Contact:       ContactDTO(oc.Contact),
		Items:         items,
	}
}

func (r SubmitOrderRequest) toDomain(ownerID string) (domain.OrderContext, error) {
	cur, err := parseCurrency(r.Currency)
	if err != nil {
		return domain.OrderContext{}, err
	}

	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, di := range r.Items {
		item, err := OrderItemFromDTO(di)
		if err != nil {
			return domain.OrderContext{}, err
		}
		items = append(items, item)
	}

	return domain.OrderContext{
		OwnerID:       ownerID,
		StoreID:       r.StoreID,
		Contact:       domain.Contact(r.Contact),
		PaymentMethod: r.PaymentMethod,
		Amount:        domain.NewMoney(r.Amount, cur),
		Items:         items,
	}, nil
}
