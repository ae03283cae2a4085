package memstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func line(productID uuid.UUID) domain.CartLine {
	return domain.CartLine{
		ProductID: productID,
		Quantity:  1,
		Price:     domain.NewMoney(decimal.NewFromInt(3), currency.USD),
	}
}

func TestCart_UniquePerOwnerAndProduct(t *testing.T) {
	ctx := context.Background()
	c := memstore.NewCart()
	owner := gofakeit.UUID()
	product := uuid.New()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Create(ctx, owner, line(product)); err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 9, conflicts)
	lines, err := c.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, domain.KindProduct, lines[0].Kind)
}

func TestCart_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	c := memstore.NewCart()
	owner := gofakeit.UUID()

	ref, err := c.Create(ctx, owner, line(uuid.New()))
	require.NoError(t, err)

	price := domain.NewMoney(decimal.NewFromInt(9), currency.USD)
	require.NoError(t, c.Update(ctx, owner, ref.LineID, 4, price))

	lines, err := c.List(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, price, lines[0].Price)

	require.ErrorIs(t, c.Update(ctx, owner, "missing", 1, price), domain.ErrNotFound)
	require.ErrorIs(t, c.Update(ctx, owner, ref.LineID, 0, price), domain.ErrInvalidQuantity)
	require.ErrorIs(t, c.Update(ctx, owner, ref.LineID, 4294967297, price), domain.ErrInvalidQuantity)

	require.NoError(t, c.Delete(ctx, owner, ref.LineID))
	require.ErrorIs(t, c.Delete(ctx, owner, ref.LineID), domain.ErrNotFound)

	_, err = c.List(ctx, "")
	require.EqualError(t, err, "ownerID is empty")
}

func TestOrders_SubmitConsumesCart(t *testing.T) {
	ctx := context.Background()
	c := memstore.NewCart()
	o := memstore.NewOrders(c)
	owner := gofakeit.UUID()

	_, err := c.Create(ctx, owner, line(uuid.New()))
	require.NoError(t, err)
	lines, err := c.List(ctx, owner)
	require.NoError(t, err)

	first, err := o.Submit(ctx, domain.OrderContext{
		OwnerID: owner,
		Amount:  domain.NewMoney(decimal.NewFromInt(3), currency.USD),
		Items:   domain.OrderItemsFromLines(lines),
	})
	require.NoError(t, err)

	lines, err = c.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)

	second, err := o.Submit(ctx, domain.OrderContext{
		OwnerID: owner,
		Amount:  domain.NewMoney(decimal.NewFromInt(1), currency.USD),
		Items:   []domain.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.NoError(t, err)

	history, err := o.History(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].ID)
	assert.Equal(t, first, history[1].ID)
	assert.Equal(t, domain.OrderStatusPending, history[0].Status)

	_, err = o.Submit(ctx, domain.OrderContext{OwnerID: owner})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestOrders_SubmitKeepsLinesAddedAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	c := memstore.NewCart()
	o := memstore.NewOrders(c)
	owner := gofakeit.UUID()

	_, err := c.Create(ctx, owner, line(uuid.New()))
	require.NoError(t, err)
	snapshot, err := c.List(ctx, owner)
	require.NoError(t, err)

	late := uuid.New()
	_, err = c.Create(ctx, owner, line(late))
	require.NoError(t, err)

	_, err = o.Submit(ctx, domain.OrderContext{
		OwnerID: owner,
		Amount:  domain.NewMoney(decimal.NewFromInt(3), currency.USD),
		Items:   domain.OrderItemsFromLines(snapshot),
	})
	require.NoError(t, err)

	lines, err := c.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, late, lines[0].ProductID)
}

func TestCart_QuantityAboveInt32(t *testing.T) {
	ctx := context.Background()
	c := memstore.NewCart()
	owner := gofakeit.UUID()

	l := line(uuid.New())
	l.Quantity = 4294967297
	_, err := c.Create(ctx, owner, l)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	lines, err := c.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	p := memstore.NewProfiles()

	_, err := p.GetProfile(ctx, "x")
	require.ErrorIs(t, err, domain.ErrNotFound)

	want := domain.Profile{OwnerID: "x", Name: gofakeit.Name(), Email: gofakeit.Email()}
	require.NoError(t, p.SaveProfile(ctx, want))

	got, err := p.GetProfile(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
