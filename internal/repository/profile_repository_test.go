package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type profileRepositorySuite struct {
	suite.Suite

	repo port.ProfileStore
	pool *pgxpool.Pool
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(profileRepositorySuite))
}

func (suite *profileRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewProfile(suite.pool)
	suite.Require().NoError(err)
}

func (suite *profileRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *profileRepositorySuite) TestSaveAndGet() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	p := domain.Profile{
		OwnerID: gofakeit.UUID(),
		Name:    gofakeit.Name(),
		Email:   gofakeit.Email(),
		Phone:   gofakeit.Phone(),
		Address: gofakeit.Address().Address,
	}
	require.NoError(t, suite.repo.SaveProfile(ctx, p))

	got, err := suite.repo.GetProfile(ctx, p.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	p.Email = gofakeit.Email()
	require.NoError(t, suite.repo.SaveProfile(ctx, p))

	got, err = suite.repo.GetProfile(ctx, p.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func (suite *profileRepositorySuite) TestGet_Errors() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.repo.GetProfile(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.repo.GetProfile(ctx, "")
	require.EqualError(t, err, "ownerID is empty")

	err = suite.repo.SaveProfile(ctx, domain.Profile{})
	require.EqualError(t, err, "ownerID is empty")
}

func (suite *profileRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE owner_profiles")
	suite.NoError(err)
}
