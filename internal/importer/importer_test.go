package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/bankimport/internal/fingerprint"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
)

type fakeStore struct {
	index    map[string]string
	existing []models.ExistingTransaction
	indexErr error

	windowFrom string
	windowTo   string
}

func (f *fakeStore) FingerprintIndex(_ context.Context, _ string) (map[string]string, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	if f.index == nil {
		return map[string]string{}, nil
	}
	return f.index, nil
}

func (f *fakeStore) TransactionsInWindow(_ context.Context, _ string, from, to string) ([]models.ExistingTransaction, error) {
	f.windowFrom = from
	f.windowTo = to
	var inWindow []models.ExistingTransaction
	for _, tx := range f.existing {
		if tx.Date >= from && tx.Date <= to {
			inWindow = append(inWindow, tx)
		}
	}
	return inWindow, nil
}

type fakeLockService struct {
	locked map[string]bool
	err    error
}

func (f *fakeLockService) IsDateLocked(_ context.Context, _ string, date string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.locked[date], nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testMapping() models.CsvMapping {
	return models.CsvMapping{
		DateColumn:        "Date",
		DescriptionColumn: "Description",
		AmountMode:        models.AmountModeSigned,
		AmountColumn:      "Amount",
		DateFormat:        models.DateFormatUSSlash,
		HasHeaderRow:      true,
	}
}

func newTestPipeline(store *fakeStore, lock *fakeLockService) *Pipeline {
	return NewPipeline(store, lock, &logging.MockLogger{}, DefaultOptions())
}

func TestRunCleanBatch(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\n1/15/2024,Coffee Shop,-4.50\n1/16/2024,Salary,2000.00\n")
	pipeline := newTestPipeline(&fakeStore{}, &fakeLockService{})

	result, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Transactions, 2)
	for _, tx := range result.Transactions {
		assert.Equal(t, models.StatusNew, tx.Status)
		assert.Len(t, tx.Fingerprint, 64)
	}
	assert.True(t, result.Lock.Valid)

	summary := result.Summarize()
	assert.Equal(t, 2, summary.New)
	assert.Zero(t, summary.Duplicates)
}

func TestRunMixedBatch(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"Date,Description,Amount",
		"1/15/2024,Coffee Shop,-4.50",    // exact duplicate
		"1/16/2024,Grocery Store,-85.20", // fuzzy duplicate (existing on 1/14)
		"1/17/2024,New Merchant,-12.00",  // new
		"bad-date,Broken Row,-1.00",      // row error
		"",
	}, "\n"))

	dupFP := fingerprint.Generate("2024-01-15", -450, "Coffee Shop")
	store := &fakeStore{
		index: map[string]string{dupFP: "tx-existing-1"},
		existing: []models.ExistingTransaction{
			{ID: "tx-existing-2", Date: "2024-01-14", AmountCents: -8520, Description: "GROCERY STORE #42"},
		},
	}
	pipeline := newTestPipeline(store, &fakeLockService{})

	result, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 4)

	assert.Equal(t, models.StatusDuplicate, result.Transactions[0].Status)
	assert.Equal(t, "tx-existing-1", result.Transactions[0].DuplicateOfID)

	assert.Equal(t, models.StatusFuzzyDuplicate, result.Transactions[1].Status)
	require.Len(t, result.Transactions[1].FuzzyMatches, 1)
	assert.Equal(t, "tx-existing-2", result.Transactions[1].FuzzyMatches[0].ID)

	assert.Equal(t, models.StatusNew, result.Transactions[2].Status)

	assert.Equal(t, models.StatusError, result.Transactions[3].Status)
	assert.Empty(t, result.Transactions[3].Fingerprint)

	summary := result.Summarize()
	assert.Equal(t, models.Summary{Total: 4, New: 1, Duplicates: 1, FuzzyDuplicates: 1, Errors: 1}, summary)
}

func TestRunIdempotentReimport(t *testing.T) {
	content := "Date,Description,Amount\n1/15/2024,Coffee Shop,-4.50\n1/16/2024,Salary,2000.00\n"
	path := writeCSV(t, content)
	store := &fakeStore{}
	pipeline := newTestPipeline(store, &fakeLockService{})

	first, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Summarize().New)

	// Simulate committing the first batch, then importing the same file.
	store.index = map[string]string{}
	for i, tx := range first.Transactions {
		store.index[tx.Fingerprint] = fmt.Sprintf("tx-%d", i)
	}

	second, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	summary := second.Summarize()
	assert.Zero(t, summary.New)
	assert.Equal(t, 2, summary.Duplicates)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}

func TestRunFuzzyWindowCoversBatchDates(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\n1/15/2024,A,-1.00\n1/20/2024,B,-2.00\n")
	store := &fakeStore{}
	pipeline := newTestPipeline(store, &fakeLockService{})

	_, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-12", store.windowFrom)
	assert.Equal(t, "2024-01-23", store.windowTo)
}

func TestRunLockedPeriodFailsVerdict(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\n1/15/2024,Coffee,-4.50\n")
	lock := &fakeLockService{locked: map[string]bool{"2024-01-15": true}}
	pipeline := newTestPipeline(&fakeStore{}, lock)

	result, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	assert.False(t, result.Lock.Valid)
	assert.Equal(t, []string{"2024-01-15"}, result.Lock.LockedDates)
}

func TestRunLockServiceUnavailable(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\n1/15/2024,Coffee,-4.50\n")
	lock := &fakeLockService{err: errors.New("lock service down")}
	pipeline := newTestPipeline(&fakeStore{}, lock)

	result, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	assert.True(t, result.Lock.Valid)
	assert.NotEmpty(t, result.Lock.Warnings)
}

func TestRunInvalidMapping(t *testing.T) {
	mapping := testMapping()
	mapping.AmountColumn = ""
	pipeline := newTestPipeline(&fakeStore{}, &fakeLockService{})

	_, err := pipeline.Run(context.Background(), "book-1", "whatever.csv", mapping)
	var mapErr *parsererror.MappingError
	assert.ErrorAs(t, err, &mapErr)
}

func TestRunFileErrorAbortsBeforeRows(t *testing.T) {
	pipeline := newTestPipeline(&fakeStore{}, &fakeLockService{})

	_, err := pipeline.Run(context.Background(), "book-1",
		filepath.Join(t.TempDir(), "missing.csv"), testMapping())
	var readErr *parsererror.ReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestRunStoreErrorPropagates(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\n1/15/2024,Coffee,-4.50\n")
	store := &fakeStore{indexErr: errors.New("db down")}
	pipeline := newTestPipeline(store, &fakeLockService{})

	_, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	assert.ErrorContains(t, err, "db down")
}

func TestRunAllErrorRowsSkipCandidateFetch(t *testing.T) {
	path := writeCSV(t, "Date,Description,Amount\nbad,Broken,-1.00\n")
	store := &fakeStore{windowFrom: "unset", windowTo: "unset"}
	pipeline := newTestPipeline(store, &fakeLockService{})

	result, err := pipeline.Run(context.Background(), "book-1", path, testMapping())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summarize().Errors)
	assert.Equal(t, "unset", store.windowFrom)
}

func TestPreviewMapsRowsWithoutDedup(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	for i := 0; i < 10; i++ {
		b.WriteString("1/15/2024,Coffee,-4.50\n")
	}
	path := writeCSV(t, b.String())
	pipeline := newTestPipeline(&fakeStore{}, &fakeLockService{})

	staged, err := pipeline.Preview(path, testMapping())
	require.NoError(t, err)

	assert.Len(t, staged, 5)
	assert.Equal(t, "2024-01-15", staged[0].Date)
	require.NotNil(t, staged[0].Amount)
	assert.Equal(t, int64(-450), *staged[0].Amount)
}
