// Package batch handles the directory staging command
package batch

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdcommon "ledgerline/bankimport/cmd/common"
	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/internal/batch"
	"ledgerline/bankimport/internal/common"
)

var mappingFlags = cmdcommon.MappingFlags{}

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Stage every bank CSV export in a directory",
	Long: `Stage every CSV file in the input directory against the ledger book.
Files are processed in name order and each file produces its own staging
batch; a report per file is written to the output directory.`,
	Run: batchFunc,
}

func init() {
	mappingFlags.Register(Cmd)
}

func batchFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Batch command called")
	root.Log.Infof("Input directory: %s", root.SharedFlags.Input)
	root.Log.Infof("Output directory: %s", root.SharedFlags.Output)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input directory is required (--input)")
	}
	book := root.ResolveBook()
	if book == "" {
		root.Log.Fatal("Ledger book is required (--book or import.book)")
	}

	mapping, err := cmdcommon.ResolveMapping(&mappingFlags, root.AppContainer.GetRegistry(), root.ResolveProfile())
	if err != nil {
		root.Log.Fatalf("Cannot resolve column mapping: %v", err)
	}

	pipeline, err := root.AppContainer.GetPipeline()
	if err != nil {
		root.Log.Fatalf("Cannot run batch import: %v", err)
	}

	processor := batch.NewProcessor(pipeline, root.AppContainer.GetLogger())
	results, err := processor.ProcessDirectory(context.Background(), book, root.SharedFlags.Input, mapping)
	if err != nil {
		root.Log.Fatalf("Error staging directory: %v", err)
	}

	failed := 0
	for _, fileResult := range results {
		if fileResult.Err != nil {
			failed++
			root.Log.Errorf("Failed to stage %s: %v", fileResult.File, fileResult.Err)
			continue
		}

		summary := fileResult.Result.Summarize()
		root.Log.Infof("%s: batch %s, %d rows (%d new, %d duplicates, %d fuzzy, %d errors)",
			filepath.Base(fileResult.File), fileResult.Result.BatchID, summary.Total,
			summary.New, summary.Duplicates, summary.FuzzyDuplicates, summary.Errors)

		if root.SharedFlags.Output != "" {
			reportFile := reportPath(root.SharedFlags.Output, fileResult.File)
			if err := common.WriteReportToCSV(fileResult.Result.Transactions, reportFile); err != nil {
				root.Log.Fatalf("Error writing report for %s: %v", fileResult.File, err)
			}
		}
	}

	if overall := batch.OverallRange(results); overall.String() != "" {
		root.Log.Infof("Staged date range: %s", overall.String())
	}
	if failed > 0 {
		root.Log.Fatalf("%d of %d files failed to stage", failed, len(results))
	}
	root.Log.Info("Batch staging completed successfully!")
}

func reportPath(outputDir, inputFile string) string {
	base := filepath.Base(inputFile)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(outputDir, name+"-report.csv")
}
