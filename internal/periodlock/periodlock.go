// Package periodlock guards imports against writing into closed accounting
// periods. The gate checks every staged date against the lock service and
// reports which rows fall on a locked date.
package periodlock

import (
	"context"
	"fmt"
	"sort"

	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
)

// Service answers whether a given date is inside a locked period for a book.
type Service interface {
	IsDateLocked(ctx context.Context, bookID string, date string) (bool, error)
}

// Gate validates a batch of staged transactions against a lock Service.
type Gate struct {
	service Service
	logger  logging.Logger
}

// NewGate creates a Gate backed by the given lock service.
func NewGate(service Service, logger logging.Logger) *Gate {
	return &Gate{service: service, logger: logger}
}

// Validate checks every transaction date in the batch. Each distinct date is
// checked once; the verdict re-expands to per-row results in batch order,
// so LockedDates can repeat when several rows share a locked date.
//
// When the lock service fails for a date, that date is treated as unlocked
// and a warning is recorded on the verdict instead of failing the batch.
func (g *Gate) Validate(ctx context.Context, bookID string, transactions []models.ProcessedTransaction) models.LockVerdict {
	verdict := models.LockVerdict{Valid: true}

	distinct := distinctDates(transactions)
	locked := make(map[string]bool, len(distinct))
	for _, date := range distinct {
		isLocked, err := g.service.IsDateLocked(ctx, bookID, date)
		if err != nil {
			warning := fmt.Sprintf("could not verify period lock for %s; treating as unlocked", date)
			verdict.Warnings = append(verdict.Warnings, warning)
			g.logger.WithError(err).Warn("Period lock check failed",
				logging.Field{Key: logging.FieldBook, Value: bookID},
				logging.Field{Key: logging.FieldDate, Value: date})
			continue
		}
		locked[date] = isLocked
	}

	for _, tx := range transactions {
		if tx.Date == "" {
			continue
		}
		if locked[tx.Date] {
			verdict.Valid = false
			verdict.LockedDates = append(verdict.LockedDates, tx.Date)
		}
	}

	if !verdict.Valid {
		g.logger.Warn("Batch contains transactions in locked periods",
			logging.Field{Key: logging.FieldBook, Value: bookID},
			logging.Field{Key: logging.FieldCount, Value: len(verdict.LockedDates)})
	}
	return verdict
}

// distinctDates returns the unique non-empty dates in the batch, sorted so
// the lock service sees a deterministic query order.
func distinctDates(transactions []models.ProcessedTransaction) []string {
	seen := make(map[string]struct{})
	for _, tx := range transactions {
		if tx.Date == "" {
			continue
		}
		seen[tx.Date] = struct{}{}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
