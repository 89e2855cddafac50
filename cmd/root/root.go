// Package root contains the root command for the application
package root

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledgerline/bankimport/internal/common"
	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/container"
	"ledgerline/bankimport/internal/currencyutils"
	"ledgerline/bankimport/internal/dedup"
	"ledgerline/bankimport/internal/ingest"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input   string
	Output  string
	Book    string
	Profile string
	Format  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppContainer holds the wired application dependencies. It is built in
	// PersistentPreRun so every subcommand sees the same configuration.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bankimport",
		Short: "A CLI tool to stage bank CSV exports into a ledger with duplicate detection.",
		Long: `bankimport reads bank CSV export files, normalizes their rows into ledger
transactions and classifies each row as new, duplicate or fuzzy duplicate
against the transactions already committed to the book.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to bankimport!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			// Set the configured logger for the utility packages
			currencyutils.SetLogger(Log)
			ingest.SetLogger(Log)
			dedup.SetLogger(Log)
			common.SetLogger(Log)

			// Ensure CSV delimiter is updated after env variables are loaded
			if delim := os.Getenv("CSV_DELIMITER"); delim != "" {
				Log.WithField("delimiter", delim).Debug("Setting CSV delimiter from environment")
				common.SetDelimiter([]rune(delim)[0])
			}

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to initialize configuration: %v", err)
			}

			AppContainer, err = container.NewContainer(context.Background(), cfg)
			if err != nil {
				Log.Fatalf("Failed to wire application dependencies: %v", err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				AppContainer.Close()
			}
		},
	}

	// SharedFlags are the common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output report file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Book, "book", "b", "", "Ledger book identifier")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Profile, "profile", "p", "", "Bank profile name")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "", "Report format (csv, json or xml)")
}

// ResolveBook returns the book from the flag or falls back to configuration.
func ResolveBook() string {
	if SharedFlags.Book != "" {
		return SharedFlags.Book
	}
	return AppContainer.GetConfig().Import.Book
}

// ResolveProfile returns the profile name from the flag or configuration.
func ResolveProfile() string {
	if SharedFlags.Profile != "" {
		return SharedFlags.Profile
	}
	return AppContainer.GetConfig().Import.Profile
}

// ResolveFormat returns the report format from the flag or configuration.
func ResolveFormat() string {
	if SharedFlags.Format != "" {
		return SharedFlags.Format
	}
	return AppContainer.GetConfig().Report.Format
}
