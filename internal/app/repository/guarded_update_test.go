package repository

import (
	"testing"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewWithDB(db, pricing.DefaultRates, decimal.NewFromInt(30)), mock
}

func TestDeleteClientQuoteGuardedUpdate(t *testing.T) {
	t.Run("draft is deleted", func(t *testing.T) {
		r, mock := newMockRepository(t)
		mock.ExpectExec(`UPDATE client_quotes SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
			WithArgs(ds.ClientQuoteDeleted, sqlmock.AnyArg(), 7, ds.ClientQuoteDraft).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.DeleteClientQuote(7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row matched", func(t *testing.T) {
		r, mock := newMockRepository(t)
		mock.ExpectExec(`UPDATE client_quotes SET status = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := r.DeleteClientQuote(7)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestArchiveProjectGuardedUpdate(t *testing.T) {
	r, mock := newMockRepository(t)
	mock.ExpectExec(`UPDATE projects SET status = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.ArchiveProject(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentLocksInvoiceRow(t *testing.T) {
	r, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "client_quotes" WHERE id = \$1 AND status <> \$2 ORDER BY .* LIMIT \$3 FOR UPDATE`).
		WithArgs(7, ds.ClientQuoteDeleted, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "total", "amount_paid"}).
			AddRow(7, ds.ClientQuoteSent, "100", "0"))
	mock.ExpectRollback()

	_, err := r.AddPayment(7, PaymentInput{Amount: decimal.NewFromInt(60), Method: "cheque"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePaymentLocksInvoiceRow(t *testing.T) {
	r, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "client_quotes" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(7, ds.ClientQuotePaid))
	mock.ExpectRollback()

	assert.ErrorIs(t, r.DeletePayment(7, 1), ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveOrderItemsLocksOrderRow(t *testing.T) {
	r, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 AND status <> \$2 ORDER BY .* LIMIT \$3 FOR UPDATE`).
		WithArgs(3, ds.OrderDeleted, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, ds.OrderDraft))
	mock.ExpectRollback()

	_, err := r.ReceiveOrderItems(3, map[uint]int{1: 1})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
