// Package dedup flags staged transactions that already exist in the ledger.
// Exact matches go by fingerprint; fuzzy matches go by amount within a
// configurable window of days around the staged date.
package dedup

import (
	"github.com/sirupsen/logrus"

	"ledgerline/bankimport/internal/dateutils"
	"ledgerline/bankimport/internal/models"
)

var log = logrus.New()

// SetLogger sets the logger for the dedup package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// DefaultDateWindowDays is the default +/- day range for fuzzy matching.
const DefaultDateWindowDays = 3

// MatchOptions controls fuzzy duplicate detection.
type MatchOptions struct {
	// DateWindowDays is the inclusive number of days on either side of
	// the staged date that an existing transaction may fall in.
	DateWindowDays int

	// RequireExactAmount requires the amounts to match to the cent.
	RequireExactAmount bool
}

// DefaultMatchOptions returns the standard fuzzy matching configuration.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		DateWindowDays:     DefaultDateWindowDays,
		RequireExactAmount: true,
	}
}

// MarkExactDuplicates sets StatusDuplicate on every transaction whose
// fingerprint already appears in the ledger index. Transactions carrying
// row errors keep StatusError; everything else becomes StatusNew.
//
// index maps fingerprint to the existing transaction's identifier.
func MarkExactDuplicates(transactions []models.ProcessedTransaction, index map[string]string) {
	duplicates := 0
	for i := range transactions {
		tx := &transactions[i]
		if !tx.IsValid() {
			tx.Status = models.StatusError
			continue
		}
		if id, ok := index[tx.Fingerprint]; ok {
			tx.Status = models.StatusDuplicate
			tx.DuplicateOfID = id
			duplicates++
			continue
		}
		tx.Status = models.StatusNew
	}
	if duplicates > 0 {
		log.WithField("count", duplicates).Debug("Marked exact duplicates")
	}
}

// FindFuzzyMatches downgrades StatusNew transactions to
// StatusFuzzyDuplicate when an existing transaction has the same amount
// (when required) within the date window. Matches are listed in the order
// the existing records were supplied. Transactions that are already
// duplicates, or that carry errors, are left untouched.
func FindFuzzyMatches(transactions []models.ProcessedTransaction, existing []models.ExistingTransaction, opts MatchOptions) {
	for i := range transactions {
		tx := &transactions[i]
		if tx.Status != models.StatusNew {
			continue
		}
		if tx.Date == "" || tx.Amount == nil {
			continue
		}

		matches := matchCandidates(tx, existing, opts)
		if len(matches) > 0 {
			tx.Status = models.StatusFuzzyDuplicate
			tx.FuzzyMatches = matches
			log.WithFields(logrus.Fields{
				"row":     tx.RowIndex,
				"matches": len(matches),
			}).Debug("Found fuzzy duplicate candidates")
		}
	}
}

func matchCandidates(tx *models.ProcessedTransaction, existing []models.ExistingTransaction, opts MatchOptions) []models.ExistingTransaction {
	var matches []models.ExistingTransaction
	for _, candidate := range existing {
		if opts.RequireExactAmount && candidate.AmountCents != *tx.Amount {
			continue
		}
		days, err := dateutils.DaysApart(tx.Date, candidate.Date)
		if err != nil {
			continue
		}
		if days <= opts.DateWindowDays {
			matches = append(matches, candidate)
		}
	}
	return matches
}
