package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
)

func validConfig() *config.Config {
	var cfg config.Config
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Import.FuzzyWindowDays = 3
	cfg.Report.Delimiter = ","
	cfg.Report.Format = "csv"
	return &cfg
}

func TestNewContainerWithoutDatabase(t *testing.T) {
	c, err := NewContainer(context.Background(), validConfig())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetRegistry())
	assert.NotNil(t, c.GetReportGenerator())
	assert.Nil(t, c.GetStore())

	_, err = c.GetPipeline()
	assert.ErrorContains(t, err, "no database configured")
}

func TestNewContainerNilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewContainerRegistryHasBuiltins(t *testing.T) {
	c, err := NewContainer(context.Background(), validConfig())
	require.NoError(t, err)
	defer c.Close()

	mapping, ok := c.GetRegistry().Lookup("chase")
	require.True(t, ok)
	assert.Equal(t, models.AmountModeSigned, mapping.AmountMode)
}

func TestNewTestContainerWiresPipeline(t *testing.T) {
	c := NewTestContainer(validConfig(), &logging.MockLogger{}, stubStore{}, stubLock{})

	pipeline, err := c.GetPipeline()
	require.NoError(t, err)
	assert.NotNil(t, pipeline)
}

type stubStore struct{}

func (stubStore) FingerprintIndex(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (stubStore) TransactionsInWindow(context.Context, string, string, string) ([]models.ExistingTransaction, error) {
	return nil, nil
}

type stubLock struct{}

func (stubLock) IsDateLocked(context.Context, string, string) (bool, error) {
	return false, nil
}
