// Package importcmd handles the full import staging command
package importcmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "ledgerline/bankimport/cmd/common"
	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/internal/common"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/validation"
)

var mappingFlags = cmdcommon.MappingFlags{}

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Stage a bank CSV export against a ledger book",
	Long: `Stage a bank CSV export: every row is normalized, fingerprinted and
classified as new, duplicate or fuzzy duplicate against the book's committed
transactions, and the batch is checked against the book's locked periods.
The staging report is written to the output file.`,
	Run: importFunc,
}

func init() {
	mappingFlags.Register(Cmd)
}

func importFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Import command called")
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)
	root.Log.Infof("Output file: %s", root.SharedFlags.Output)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file is required (--input)")
	}
	book := root.ResolveBook()
	if book == "" {
		root.Log.Fatal("Ledger book is required (--book or import.book)")
	}

	mapping, err := cmdcommon.ResolveMapping(&mappingFlags, root.AppContainer.GetRegistry(), root.ResolveProfile())
	if err != nil {
		root.Log.Fatalf("Cannot resolve column mapping: %v", err)
	}

	format := root.ResolveFormat()
	if err := validation.IsValidOutputFormat(format); err != nil {
		root.Log.Fatalf("Invalid report format: %v", err)
	}

	pipeline, err := root.AppContainer.GetPipeline()
	if err != nil {
		root.Log.Fatalf("Cannot run import: %v", err)
	}

	result, err := pipeline.Run(context.Background(), book, root.SharedFlags.Input, mapping)
	if err != nil {
		root.Log.Fatalf("Error staging import: %v", err)
	}

	summary := result.Summarize()
	root.Log.Infof("Batch %s: %d rows (%d new, %d duplicates, %d fuzzy, %d errors)",
		result.BatchID, summary.Total, summary.New, summary.Duplicates,
		summary.FuzzyDuplicates, summary.Errors)
	if !result.Lock.Valid {
		root.Log.Warnf("Batch touches locked periods: %v", result.Lock.LockedDates)
	}
	for _, warning := range result.Lock.Warnings {
		root.Log.Warn(warning)
	}

	if root.SharedFlags.Output != "" {
		if err := writeReport(result, format); err != nil {
			root.Log.Fatalf("Error writing report: %v", err)
		}
		root.Log.Infof("Staging report written to %s", root.SharedFlags.Output)
	}

	root.Log.Info("Import staging completed successfully!")
}

func writeReport(result *models.ImportResult, format string) error {
	switch format {
	case "csv":
		return common.WriteReportToCSV(result.Transactions, root.SharedFlags.Output)
	case "json", "xml":
		data, err := root.AppContainer.GetReportGenerator().Generate(result, format)
		if err != nil {
			return err
		}
		return os.WriteFile(root.SharedFlags.Output, data, 0o600)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
