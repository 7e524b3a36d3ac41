package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tradecsv/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "tradecsv",
	Short: "Extract trade confirmation tables from PDFs into a CSV",
	Long: `tradecsv reads brokerage trade confirmation PDFs, extracts their trade
tables, and writes every trade to one CSV with a fixed 16-column header.

Settings not given as flags are read from the same environment variables
as the server (EXTRACT_LINE_TOLERANCE, EXTRACT_TEXT_TOLERANCE, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(cmd.ErrOrStderr(), logLevel, logFormat)
	}

	rootCmd.AddCommand(extractCmd)
}
