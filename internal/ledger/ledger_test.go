package ledger

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/bankimport/internal/models"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresStore(mock)
}

func TestFingerprintIndex(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(fingerprintIndexQuery)).
		WithArgs("book-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "fingerprint"}).
			AddRow("tx-1", "fp-aaa").
			AddRow("tx-2", "fp-bbb"))

	index, err := store.FingerprintIndex(context.Background(), "book-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"fp-aaa": "tx-1", "fp-bbb": "tx-2"}, index)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFingerprintIndexEmpty(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(fingerprintIndexQuery)).
		WithArgs("book-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "fingerprint"}))

	index, err := store.FingerprintIndex(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Empty(t, index)
}

func TestFingerprintIndexQueryError(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(fingerprintIndexQuery)).
		WithArgs("book-1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.FingerprintIndex(context.Background(), "book-1")
	assert.ErrorContains(t, err, "failed to query fingerprint index")
}

func TestTransactionsInWindow(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(transactionsInWindowQuery)).
		WithArgs("book-1", "2024-01-12", "2024-01-18").
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "amount_cents", "description"}).
			AddRow("tx-1", "2024-01-14", int64(-450), "coffee shop").
			AddRow("tx-2", "2024-01-15", int64(200000), "salary"))

	txs, err := store.TransactionsInWindow(context.Background(), "book-1", "2024-01-12", "2024-01-18")
	require.NoError(t, err)

	require.Len(t, txs, 2)
	assert.Equal(t, models.ExistingTransaction{
		ID: "tx-1", Date: "2024-01-14", AmountCents: -450, Description: "coffee shop",
	}, txs[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDateLocked(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(isDateLockedQuery)).
		WithArgs("book-1", "2024-01-15").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	locked, err := store.IsDateLocked(context.Background(), "book-1", "2024-01-15")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestIsDateLockedError(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(isDateLockedQuery)).
		WithArgs("book-1", "2024-01-15").
		WillReturnError(errors.New("timeout"))

	_, err := store.IsDateLocked(context.Background(), "book-1", "2024-01-15")
	assert.ErrorContains(t, err, "failed to check period lock")
}

func TestSaveNewSkipsNonNewRows(t *testing.T) {
	mock, store := newMockStore(t)

	amount := int64(-450)
	newTx := models.ProcessedTransaction{
		StagedTransaction: models.StagedTransaction{Date: "2024-01-15", Amount: &amount, Description: "coffee"},
		Fingerprint:       "fp-aaa",
		Status:            models.StatusNew,
	}
	dupTx := newTx
	dupTx.Status = models.StatusDuplicate

	mock.ExpectExec(regexp.QuoteMeta(insertTransactionQuery)).
		WithArgs(pgxmock.AnyArg(), "book-1", "batch-1", "2024-01-15", int64(-450), "coffee", "fp-aaa").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := store.SaveNew(context.Background(), "book-1", "batch-1",
		[]models.ProcessedTransaction{newTx, dupTx})
	require.NoError(t, err)

	assert.Equal(t, 1, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveNewInsertError(t *testing.T) {
	mock, store := newMockStore(t)

	amount := int64(100)
	tx := models.ProcessedTransaction{
		StagedTransaction: models.StagedTransaction{Date: "2024-01-15", Amount: &amount, Description: "x", RowIndex: 3},
		Fingerprint:       "fp",
		Status:            models.StatusNew,
	}

	mock.ExpectExec(regexp.QuoteMeta(insertTransactionQuery)).
		WithArgs(pgxmock.AnyArg(), "book-1", "batch-1", "2024-01-15", int64(100), "x", "fp").
		WillReturnError(errors.New("constraint violation"))

	saved, err := store.SaveNew(context.Background(), "book-1", "batch-1",
		[]models.ProcessedTransaction{tx})
	assert.Error(t, err)
	assert.Equal(t, 0, saved)
}
