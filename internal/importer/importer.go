// Package importer orchestrates the staging pipeline for one import file:
// ingest, row mapping, fingerprinting, duplicate classification and the
// period-lock gate. It never commits anything; the caller decides what to
// do with the result.
package importer

import (
	"context"

	"github.com/google/uuid"

	"ledgerline/bankimport/internal/dateutils"
	"ledgerline/bankimport/internal/dedup"
	"ledgerline/bankimport/internal/fingerprint"
	"ledgerline/bankimport/internal/ingest"
	"ledgerline/bankimport/internal/ledger"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/mapper"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/periodlock"
)

// Options tunes the pipeline.
type Options struct {
	// FuzzyWindowDays is the +/- day range for fuzzy duplicate matching.
	FuzzyWindowDays int
}

// DefaultOptions returns the standard pipeline configuration.
func DefaultOptions() Options {
	return Options{FuzzyWindowDays: dedup.DefaultDateWindowDays}
}

// Pipeline runs imports against one ledger book.
type Pipeline struct {
	store  ledger.TransactionStore
	gate   *periodlock.Gate
	logger logging.Logger
	opts   Options
}

// NewPipeline wires the pipeline from its collaborators.
func NewPipeline(store ledger.TransactionStore, lockService periodlock.Service, logger logging.Logger, opts Options) *Pipeline {
	if opts.FuzzyWindowDays <= 0 {
		opts.FuzzyWindowDays = dedup.DefaultDateWindowDays
	}
	return &Pipeline{
		store:  store,
		gate:   periodlock.NewGate(lockService, logger),
		logger: logger,
		opts:   opts,
	}
}

// Preview parses the first few rows of the file and maps them without any
// duplicate detection or lock checks.
func (p *Pipeline) Preview(filePath string, mapping models.CsvMapping) ([]models.StagedTransaction, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	result, err := ingest.Preview(filePath, mapping)
	if err != nil {
		return nil, err
	}

	staged := make([]models.StagedTransaction, 0, len(result.Rows))
	for i, row := range result.Rows {
		staged = append(staged, mapper.MapRow(row, mapping, i))
	}
	return staged, nil
}

// Run stages the whole file: every row is mapped, fingerprinted and
// classified against the book's committed transactions, and the batch is
// checked against the book's locked periods. File-level failures (size,
// type, row ceiling, unreadable data) abort with an error before any row
// result exists; row-level failures land on the rows themselves.
func (p *Pipeline) Run(ctx context.Context, bookID, filePath string, mapping models.CsvMapping) (*models.ImportResult, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	parsed, err := ingest.ParseFull(filePath, mapping)
	if err != nil {
		return nil, err
	}

	transactions := p.stageRows(parsed.Rows, mapping)

	index, err := p.store.FingerprintIndex(ctx, bookID)
	if err != nil {
		return nil, err
	}
	dedup.MarkExactDuplicates(transactions, index)

	existing, err := p.fetchFuzzyCandidates(ctx, bookID, transactions)
	if err != nil {
		return nil, err
	}
	dedup.FindFuzzyMatches(transactions, existing, dedup.MatchOptions{
		DateWindowDays:     p.opts.FuzzyWindowDays,
		RequireExactAmount: true,
	})

	result := &models.ImportResult{
		BatchID:      uuid.New().String(),
		Transactions: transactions,
		Lock:         p.gate.Validate(ctx, bookID, transactions),
	}

	summary := result.Summarize()
	p.logger.Info("Import batch staged",
		logging.Field{Key: logging.FieldBatch, Value: result.BatchID},
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: summary.Total},
		logging.Field{Key: "new", Value: summary.New},
		logging.Field{Key: "duplicates", Value: summary.Duplicates},
		logging.Field{Key: "fuzzy", Value: summary.FuzzyDuplicates},
		logging.Field{Key: "errors", Value: summary.Errors})
	return result, nil
}

func (p *Pipeline) stageRows(rows []map[string]string, mapping models.CsvMapping) []models.ProcessedTransaction {
	transactions := make([]models.ProcessedTransaction, 0, len(rows))
	for i, row := range rows {
		staged := mapper.MapRow(row, mapping, i)

		tx := models.ProcessedTransaction{StagedTransaction: staged}
		if staged.IsValid() {
			tx.Fingerprint = fingerprint.Generate(staged.Date, *staged.Amount, staged.Description)
		} else {
			tx.Status = models.StatusError
		}
		transactions = append(transactions, tx)
	}
	return transactions
}

// fetchFuzzyCandidates loads committed transactions covering every still-new
// staged date, extended by the fuzzy window on both sides. One bulk query
// covers the whole batch.
func (p *Pipeline) fetchFuzzyCandidates(ctx context.Context, bookID string, transactions []models.ProcessedTransaction) ([]models.ExistingTransaction, error) {
	minDate, maxDate := "", ""
	for i := range transactions {
		tx := &transactions[i]
		if tx.Status != models.StatusNew || tx.Date == "" {
			continue
		}
		if minDate == "" || tx.Date < minDate {
			minDate = tx.Date
		}
		if maxDate == "" || tx.Date > maxDate {
			maxDate = tx.Date
		}
	}
	if minDate == "" {
		return nil, nil
	}

	from, err := dateutils.AddDays(minDate, -p.opts.FuzzyWindowDays)
	if err != nil {
		return nil, err
	}
	to, err := dateutils.AddDays(maxDate, p.opts.FuzzyWindowDays)
	if err != nil {
		return nil, err
	}
	return p.store.TransactionsInWindow(ctx, bookID, from, to)
}
