package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/cart"
	"github.com/nikolayk812/cartcheckout/internal/checkout"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	owner    string
	cart     *fakeCart
	orders   *fakeOrders
	wallet   *wallet.Memory
	profiles fakeProfiles
	prefs    fakePrefs
	events   *fakeEvents
	orch     *checkout.Orchestrator
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()

	f := &fixture{
		owner:  gofakeit.UUID(),
		cart:   newFakeCart(),
		orders: &fakeOrders{},
		wallet: wallet.NewMemory(currency.USD),
		prefs:  fakePrefs{},
		events: &fakeEvents{},
	}
	f.profiles = fakeProfiles{
		f.owner: {OwnerID: f.owner, Name: gofakeit.Name(), Email: gofakeit.Email()},
	}
	f.wallet.Set(f.owner, decimal.RequireFromString(balance))
	f.useWallet(t, f.wallet)

	return f
}

func (f *fixture) useWallet(t *testing.T, w port.Wallet) {
	t.Helper()

	orch, err := checkout.New(f.cart, f.orders, w, f.profiles, checkout.Config{
		DefaultStoreID:     "store-default",
		PlaceholderAddress: "N/A",
		PlaceholderPhone:   "000",
		PaymentMethod:      "wallet",
		ClearDelay:         10 * time.Millisecond,
	},
		checkout.WithPreferences(f.prefs),
		checkout.WithEventPublisher(f.events),
		checkout.WithRetryDelay(time.Millisecond),
	)
	require.NoError(t, err)
	f.orch = orch
}

func (f *fixture) line(amount string, qty int) domain.CartLine {
	return domain.CartLine{
		LineID:    gofakeit.UUID(),
		ProductID: uuid.New(),
		Name:      gofakeit.ProductName(),
		Quantity:  qty,
		Price:     domain.NewMoney(decimal.RequireFromString(amount), currency.USD),
		Kind:      domain.KindProduct,
	}
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := f.wallet.Balance(context.Background(), f.owner)
	require.NoError(t, err)
	return b.Amount
}

func waitCleared(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("cart view was not cleared")
	}
}

func TestNew(t *testing.T) {
	_, err := checkout.New(nil, &fakeOrders{}, wallet.NewMemory(currency.USD), fakeProfiles{}, checkout.Config{DefaultStoreID: "s"})
	require.Error(t, err)

	_, err = checkout.New(newFakeCart(), &fakeOrders{}, wallet.NewMemory(currency.USD), fakeProfiles{}, checkout.Config{})
	require.EqualError(t, err, "default store id is empty")
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100")
	l := f.line("10", 1)
	f.cart.put(f.owner, l)
	view := cart.NewView(l)

	res, err := f.orch.Checkout(ctx, checkout.Request{OwnerID: f.owner, View: view})
	require.NoError(t, err)

	assert.Equal(t, checkout.StateCommitted, res.State)
	assert.True(t, decimal.RequireFromString("10").Equal(res.Order.Amount.Amount))
	assert.True(t, decimal.RequireFromString("90").Equal(res.Balance.Amount))
	assert.True(t, decimal.RequireFromString("90").Equal(f.balance(t)))
	assert.NotEqual(t, uuid.Nil, res.Order.ID)
	assert.Len(t, res.History, 1)
	assert.Len(t, res.Snapshot, 1)

	require.Equal(t, 1, f.orders.count())
	oc := f.orders.submitted[0]
	assert.Equal(t, "store-default", oc.StoreID)
	assert.Equal(t, "N/A", oc.Contact.Address)
	assert.Equal(t, "000", oc.Contact.Phone)
	assert.Equal(t, "wallet", oc.PaymentMethod)
	require.Len(t, oc.Items, 1)
	assert.Equal(t, l.ProductID, oc.Items[0].ProductID)

	require.Len(t, f.events.orders, 1)
	assert.Equal(t, res.Order.ID, f.events.orders[0].ID)

	waitCleared(t, res.Cleared)
	assert.True(t, view.IsEmpty())
}

func TestCheckout_TaxMultiplierScalesCharge(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("20", 1)
	f.cart.put(f.owner, l)

	res, err := f.orch.Checkout(context.Background(), checkout.Request{
		OwnerID:       f.owner,
		View:          cart.NewView(l),
		TaxMultiplier: decimal.RequireFromString("1.1"),
	})
	require.NoError(t, err)
	waitCleared(t, res.Cleared)

	assert.True(t, decimal.RequireFromString("20").Equal(res.Order.Amount.Amount))
	assert.True(t, decimal.RequireFromString("22").Equal(res.Charged.Amount))
	assert.True(t, decimal.RequireFromString("78").Equal(f.balance(t)))
}

func TestCheckout_SubCentCharge_RoundedToMinorUnit(t *testing.T) {
	tests := []struct {
		name        string
		submitErr   error
		wantBalance string
	}{
		{name: "committed", wantBalance: "89.99"},
		{name: "submit fails: balance restored", submitErr: context.DeadlineExceeded, wantBalance: "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "100")
			l := f.line("10.00", 1)
			f.cart.put(f.owner, l)
			f.orders.submitErr = tt.submitErr

			res, err := f.orch.Checkout(context.Background(), checkout.Request{
				OwnerID:       f.owner,
				View:          cart.NewView(l),
				TaxMultiplier: decimal.RequireFromString("1.0005"),
			})
			if tt.submitErr != nil {
				require.ErrorIs(t, err, tt.submitErr)
			} else {
				require.NoError(t, err)
				waitCleared(t, res.Cleared)
				assert.Equal(t, "10.01", res.Charged.Amount.String())
			}

			assert.Equal(t, tt.wantBalance, f.balance(t).StringFixed(2))
		})
	}
}

func TestCheckout_CartCurrencyDiffersFromWallet(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("10", 1)
	l.Price = domain.NewMoney(decimal.NewFromInt(10), currency.JPY)
	f.cart.put(f.owner, l)

	res, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, checkout.StateIdle, res.State)
	assert.Zero(t, f.orders.count())
	assert.True(t, decimal.NewFromInt(100).Equal(f.balance(t)))
}

func TestCheckout_LostCreditResponse_CreditsOnce(t *testing.T) {
	f := newFixture(t, "50")
	w := newKeyedWallet(f.wallet)
	w.loseFirstCredit = true
	f.useWallet(t, w)

	l := f.line("20", 1)
	f.cart.put(f.owner, l)
	f.orders.submitErr = errors.New("order service unavailable")

	_, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.ErrorIs(t, err, f.orders.submitErr)
	require.NotErrorIs(t, err, domain.ErrTransport)

	assert.True(t, decimal.NewFromInt(50).Equal(f.balance(t)), "balance %s", f.balance(t))
	assert.Equal(t, 2, w.credits)

	require.Len(t, w.keys, 3)
	debitKey, creditKey := w.keys[0], w.keys[1]
	assert.NotEmpty(t, debitKey)
	assert.NotEqual(t, debitKey, creditKey)
	assert.Equal(t, creditKey, w.keys[2], "retries reuse the credit key")
}

func TestCheckout_RefusedCredit_NotRetried(t *testing.T) {
	f := newFixture(t, "50")
	w := newKeyedWallet(f.wallet)
	w.creditErr = domain.ErrNotFound
	f.useWallet(t, w)

	l := f.line("20", 1)
	f.cart.put(f.owner, l)
	f.orders.submitErr = errors.New("order service unavailable")

	_, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.ErrorIs(t, err, f.orders.submitErr)
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 1, w.credits)
}

func TestCheckout_RememberedOverridesDefaults(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("5", 2)
	f.cart.put(f.owner, l)
	f.prefs[f.owner] = domain.Remembered{StoreID: "store-7", Address: "1 Main St", Phone: "555"}

	res, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.NoError(t, err)
	waitCleared(t, res.Cleared)

	oc := f.orders.submitted[0]
	assert.Equal(t, "store-7", oc.StoreID)
	assert.Equal(t, "1 Main St", oc.Contact.Address)
	assert.Equal(t, "555", oc.Contact.Phone)
}

func TestCheckout_LineStoreWins(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("5", 1)
	l.StoreID = "store-line"
	f.cart.put(f.owner, l)
	f.prefs[f.owner] = domain.Remembered{StoreID: "store-7"}

	res, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.NoError(t, err)
	waitCleared(t, res.Cleared)

	assert.Equal(t, "store-line", f.orders.submitted[0].StoreID)
}

func TestCheckout_SubmitFailure_RestoresWallet(t *testing.T) {
	f := newFixture(t, "50")
	l := f.line("12.50", 2)
	f.cart.put(f.owner, l)
	f.orders.submitErr = errors.New("order service unavailable")
	view := cart.NewView(l)

	res, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: view})
	require.Error(t, err)
	assert.ErrorIs(t, err, f.orders.submitErr)

	assert.Equal(t, checkout.StateIdle, res.State)
	assert.Nil(t, res.Cleared)
	assert.True(t, decimal.RequireFromString("50").Equal(f.balance(t)))
	assert.Zero(t, f.orders.count())
	assert.Equal(t, []domain.CartLine{l}, view.Lines())
	assert.Empty(t, f.events.orders)
}

func TestCheckout_FailsBeforeDebit(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		lines     []domain.CartLine
		emptyView bool
		noProfile bool
		listErr   error
		wantError error
	}{
		{
			name:      "empty view",
			balance:   "100",
			emptyView: true,
			wantError: domain.ErrEmptyCart,
		},
		{
			name:      "empty authoritative cart",
			balance:   "100",
			wantError: domain.ErrInvalidCartTotal,
		},
		{
			name:    "zero total",
			balance: "100",
			lines: []domain.CartLine{{
				LineID: "1", ProductID: uuid.New(), Quantity: 1,
				Price: domain.NewMoney(decimal.Zero, currency.USD),
			}},
			wantError: domain.ErrInvalidCartTotal,
		},
		{
			name:    "mixed currency",
			balance: "100",
			lines: []domain.CartLine{
				{LineID: "1", ProductID: uuid.New(), Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(1), currency.USD)},
				{LineID: "2", ProductID: uuid.New(), Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(1), currency.EUR)},
			},
			wantError: domain.ErrMixedCurrency,
		},
		{
			name:    "missing contact",
			balance: "100",
			lines: []domain.CartLine{
				{LineID: "1", ProductID: uuid.New(), Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(1), currency.USD)},
			},
			noProfile: true,
			wantError: domain.ErrMissingContact,
		},
		{
			name:    "insufficient funds",
			balance: "5",
			lines: []domain.CartLine{
				{LineID: "1", ProductID: uuid.New(), Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(10), currency.USD)},
			},
			wantError: domain.ErrInsufficientFunds,
		},
		{
			name:    "cart store unreachable",
			balance: "100",
			lines: []domain.CartLine{
				{LineID: "1", ProductID: uuid.New(), Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(1), currency.USD)},
			},
			listErr:   domain.ErrTransport,
			wantError: domain.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.balance)
			f.cart.put(f.owner, tt.lines...)
			f.cart.listErr = tt.listErr
			if tt.noProfile {
				delete(f.profiles, f.owner)
			}

			view := cart.NewView(tt.lines...)
			if tt.emptyView {
				view = cart.NewView()
			} else if len(tt.lines) == 0 {
				view = cart.NewView(f.line("1", 1))
			}

			res, err := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: view})
			require.ErrorIs(t, err, tt.wantError)

			assert.Equal(t, checkout.StateIdle, res.State)
			assert.Zero(t, f.orders.count())
			assert.True(t, decimal.RequireFromString(tt.balance).Equal(f.balance(t)))
		})
	}
}

func TestCheckout_ConcurrentForSameOwner_DebitsOnce(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("10", 1)
	f.cart.put(f.owner, l)
	f.orders.entered = make(chan struct{})
	f.orders.release = make(chan struct{})

	var (
		wg    sync.WaitGroup
		first checkout.Result
		err1  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, err1 = f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	}()

	<-f.orders.entered

	_, err2 := f.orch.Checkout(context.Background(), checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	require.ErrorIs(t, err2, domain.ErrCheckoutInProgress)

	close(f.orders.release)
	wg.Wait()

	require.NoError(t, err1)
	waitCleared(t, first.Cleared)
	assert.Equal(t, 1, f.orders.count())
	assert.True(t, decimal.RequireFromString("90").Equal(f.balance(t)))
}

func TestCheckout_CancelledAfterDebitStillCommits(t *testing.T) {
	f := newFixture(t, "100")
	l := f.line("10", 1)
	f.cart.put(f.owner, l)
	f.orders.entered = make(chan struct{})
	f.orders.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())

	var (
		wg  sync.WaitGroup
		res checkout.Result
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = f.orch.Checkout(ctx, checkout.Request{OwnerID: f.owner, View: cart.NewView(l)})
	}()

	<-f.orders.entered
	cancel()
	close(f.orders.release)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, checkout.StateCommitted, res.State)
	waitCleared(t, res.Cleared)
}

func TestCheckout_EmptyOwner(t *testing.T) {
	f := newFixture(t, "1")
	_, err := f.orch.Checkout(context.Background(), checkout.Request{View: cart.NewView()})
	require.EqualError(t, err, "ownerID is empty")
}
