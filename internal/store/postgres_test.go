package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealdesk/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresSaveProperty(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO properties`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p := &model.Property{UserID: "user-1", PurchasePrice: decimal.NewFromInt(100000)}
	require.NoError(t, s.SaveProperty(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetPropertyNotFound(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM properties`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}))

	_, err := s.GetProperty(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDeal(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgresStore(t)

	payload := []byte(`{
		"strategy": "ltr",
		"id": "deal-1",
		"purchase_price": "120000",
		"monthly_rent": "1100"
	}`)
	mock.ExpectQuery(`SELECT payload FROM deals`).
		WithArgs("deal-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	deal, err := s.GetDeal(context.Background(), "deal-1")
	require.NoError(t, err)
	assert.Equal(t, model.StrategyLongTermRental, deal.Strategy())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddTransaction(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO transactions`).
		WithArgs(pgxmock.AnyArg(), "prop-1", pgxmock.AnyArg(), "income", "rent", pgxmock.AnyArg(), "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx := &model.Transaction{
		PropertyID: "prop-1",
		Date:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Type:       model.TransactionIncome,
		Category:   "rent",
		Amount:     decimal.NewFromInt(1500),
	}
	require.NoError(t, s.AddTransaction(context.Background(), tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddTransactionRejectsInvalid(t *testing.T) {
	t.Parallel()
	s, _ := newMockPostgresStore(t)

	err := s.AddTransaction(context.Background(), &model.Transaction{
		Date:   time.Now(),
		Type:   model.TransactionIncome,
		Amount: decimal.NewFromInt(1),
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "property_id", verr.Field)
}

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS properties`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
