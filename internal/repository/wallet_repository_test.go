package repository_test

import (
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type walletRepositorySuite struct {
	suite.Suite

	repo port.WalletAccounts
	pool *pgxpool.Pool
}

func TestWalletRepositorySuite(t *testing.T) {
	suite.Run(t, new(walletRepositorySuite))
}

func (suite *walletRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewWallet(suite.pool)
	suite.Require().NoError(err)
}

func (suite *walletRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *walletRepositorySuite) TestDebit() {
	defer suite.deleteAll()

	tests := []struct {
		name        string
		open        string
		amount      string
		amountCur   currency.Unit
		ownerID     string
		wantBalance string
		wantError   error
		wantText    string
	}{
		{
			name:        "debit within balance: ok",
			open:        "100",
			amount:      "10",
			wantBalance: "90",
		},
		{
			name:        "debit whole balance: ok",
			open:        "25.50",
			amount:      "25.50",
			wantBalance: "0",
		},
		{
			name:        "debit more than balance: insufficient funds",
			open:        "5",
			amount:      "10",
			wantBalance: "5",
			wantError:   domain.ErrInsufficientFunds,
		},
		{
			name:      "debit unknown account: not found",
			amount:    "1",
			wantError: domain.ErrNotFound,
		},
		{
			name:        "debit zero amount: error",
			open:        "5",
			amount:      "0",
			wantBalance: "5",
			wantError:   domain.ErrInvalidAmount,
		},
		{
			name:        "debit sub cent amount: error",
			open:        "5",
			amount:      "1.005",
			wantBalance: "5",
			wantError:   domain.ErrInvalidAmount,
		},
		{
			name:        "debit in another currency: mismatch",
			open:        "100",
			amount:      "10",
			amountCur:   currency.JPY,
			wantBalance: "100",
			wantError:   domain.ErrCurrencyMismatch,
		},
		{
			name:     "debit with empty owner ID: error",
			ownerID:  "-",
			amount:   "1",
			wantText: "ownerID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			ownerID := gofakeit.UUID()
			if tt.ownerID == "-" {
				ownerID = ""
			}
			if tt.open != "" {
				require.NoError(t, suite.repo.Open(ctx, ownerID, mustMoney(t, tt.open)))
			}

			amount := mustMoney(t, tt.amount)
			if tt.amountCur != (currency.Unit{}) {
				amount.Currency = tt.amountCur
			}

			_, err := suite.repo.Debit(ctx, ownerID, amount)
			switch {
			case tt.wantText != "":
				require.EqualError(t, err, tt.wantText)
				return
			case tt.wantError != nil:
				require.ErrorIs(t, err, tt.wantError)
			default:
				require.NoError(t, err)
			}

			if tt.wantBalance == "" {
				return
			}
			balance, err := suite.repo.Balance(ctx, ownerID)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantBalance).Equal(balance.Amount),
				"balance %s", balance.Amount)
			assert.Equal(t, currency.USD.String(), balance.Currency.String())
		})
	}
}

func (suite *walletRepositorySuite) TestCredit_RestoresExactBalance() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	ownerID := gofakeit.UUID()
	require.NoError(t, suite.repo.Open(ctx, ownerID, mustMoney(t, "50")))

	amount := mustMoney(t, "24.99")
	_, err := suite.repo.Debit(ctx, ownerID, amount)
	require.NoError(t, err)

	balance, err := suite.repo.Credit(ctx, ownerID, amount)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(balance.Amount))

	_, err = suite.repo.Credit(ctx, gofakeit.UUID(), amount)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.repo.Credit(ctx, ownerID, domain.NewMoney(decimal.NewFromInt(5), currency.EUR))
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	balance, err = suite.repo.Balance(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(balance.Amount))
}

func (suite *walletRepositorySuite) TestDebit_Concurrent_NeverOverdraws() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	ownerID := gofakeit.UUID()
	require.NoError(t, suite.repo.Open(ctx, ownerID, mustMoney(t, "30")))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := suite.repo.Debit(ctx, ownerID, mustMoney(t, "10")); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)

	balance, err := suite.repo.Balance(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, balance.Amount.IsZero())
}

func (suite *walletRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE wallet_accounts")
	suite.NoError(err)
}
