// Package ledger provides access to previously committed transactions and
// locked accounting periods in PostgreSQL. The import pipeline reads from it
// to detect duplicates and writes accepted rows back through it.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerline/bankimport/internal/models"
)

// PgxPool abstracts the subset of pgxpool.Pool used by the store to allow mocking in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ PgxPool = (*pgxpool.Pool)(nil)

// TransactionStore is the read surface the deduplicators need.
type TransactionStore interface {
	// FingerprintIndex returns fingerprint -> transaction id for every
	// committed transaction in the book.
	FingerprintIndex(ctx context.Context, bookID string) (map[string]string, error)

	// TransactionsInWindow returns committed transactions for the book
	// with dates in [from, to], ordered by date then id.
	TransactionsInWindow(ctx context.Context, bookID string, from, to string) ([]models.ExistingTransaction, error)
}

const fingerprintIndexQuery = `
	SELECT id, fingerprint
	FROM transactions
	WHERE book_id = $1 AND fingerprint IS NOT NULL
`

const transactionsInWindowQuery = `
	SELECT id, date, amount_cents, description
	FROM transactions
	WHERE book_id = $1 AND date BETWEEN $2 AND $3
	ORDER BY date, id
`

const isDateLockedQuery = `
	SELECT EXISTS (
		SELECT 1 FROM locked_periods
		WHERE book_id = $1 AND $2 BETWEEN start_date AND end_date
	)
`

const insertTransactionQuery = `
	INSERT INTO transactions (id, book_id, batch_id, date, amount_cents, description, fingerprint)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// PostgresStore implements TransactionStore and the period lock check
// against PostgreSQL.
type PostgresStore struct {
	pgpool PgxPool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pgpool PgxPool) *PostgresStore {
	return &PostgresStore{pgpool: pgpool}
}

// FingerprintIndex returns fingerprint -> id for every committed transaction.
func (s *PostgresStore) FingerprintIndex(ctx context.Context, bookID string) (map[string]string, error) {
	rows, err := s.pgpool.Query(ctx, fingerprintIndexQuery, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var id, fp string
		if err := rows.Scan(&id, &fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint row: %w", err)
		}
		index[fp] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fingerprint index: %w", err)
	}
	return index, nil
}

// TransactionsInWindow returns committed transactions with dates in [from, to].
func (s *PostgresStore) TransactionsInWindow(ctx context.Context, bookID string, from, to string) ([]models.ExistingTransaction, error) {
	rows, err := s.pgpool.Query(ctx, transactionsInWindowQuery, bookID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions in window: %w", err)
	}
	defer rows.Close()

	var transactions []models.ExistingTransaction
	for rows.Next() {
		var tx models.ExistingTransaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.AmountCents, &tx.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions in window: %w", err)
	}
	return transactions, nil
}

// IsDateLocked reports whether the date falls inside a locked period.
func (s *PostgresStore) IsDateLocked(ctx context.Context, bookID string, date string) (bool, error) {
	var locked bool
	err := s.pgpool.QueryRow(ctx, isDateLockedQuery, bookID, date).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("failed to check period lock: %w", err)
	}
	return locked, nil
}

// SaveNew inserts the StatusNew transactions of a batch. Duplicates,
// fuzzy duplicates and error rows are skipped. Returns the number of
// rows written.
func (s *PostgresStore) SaveNew(ctx context.Context, bookID, batchID string, transactions []models.ProcessedTransaction) (int, error) {
	saved := 0
	for _, tx := range transactions {
		if tx.Status != models.StatusNew {
			continue
		}
		_, err := s.pgpool.Exec(ctx, insertTransactionQuery,
			uuid.New().String(), bookID, batchID, tx.Date, *tx.Amount, tx.Description, tx.Fingerprint,
		)
		if err != nil {
			return saved, fmt.Errorf("failed to insert transaction at row %d: %w", tx.RowIndex, err)
		}
		saved++
	}
	return saved, nil
}
