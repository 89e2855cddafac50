// Package preview handles the import preview command
package preview

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "ledgerline/bankimport/cmd/common"
	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/internal/currencyutils"
	"ledgerline/bankimport/internal/importer"
	"ledgerline/bankimport/internal/models"
)

var mappingFlags = cmdcommon.MappingFlags{}

// Cmd represents the preview command
var Cmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the first rows of a bank CSV export",
	Long: `Preview parses the first few rows of a bank CSV export with the selected
bank profile so the column mapping can be verified before a full import.
No duplicate detection or period lock checks are performed.`,
	Run: previewFunc,
}

func init() {
	mappingFlags.Register(Cmd)
}

func previewFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Preview command called")
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Input file is required (--input)")
	}

	mapping, err := cmdcommon.ResolveMapping(&mappingFlags, root.AppContainer.GetRegistry(), root.ResolveProfile())
	if err != nil {
		root.Log.Fatalf("Cannot resolve column mapping: %v", err)
	}

	// The preview pipeline never touches the database.
	pipeline := importer.NewPipeline(nil, nil, root.AppContainer.GetLogger(), importer.DefaultOptions())
	staged, err := pipeline.Preview(root.SharedFlags.Input, mapping)
	if err != nil {
		root.Log.Fatalf("Error previewing file: %v", err)
	}

	for i := range staged {
		printStagedRow(&staged[i])
	}
	root.Log.Infof("Previewed %d rows", len(staged))
}

func printStagedRow(row *models.StagedTransaction) {
	amount := "-"
	if row.Amount != nil {
		amount = currencyutils.FormatCents(*row.Amount)
	}
	fmt.Printf("row %d: date=%s amount=%s description=%q\n",
		row.RowIndex+1, row.Date, amount, row.Description)
	for _, msg := range row.ErrorMessages() {
		fmt.Printf("  error: %s\n", msg)
	}
}
