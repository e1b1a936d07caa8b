package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qrfatura/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "qrfatura",
	Short: "qrfatura - extract Turkish e-invoice data from PDF QR codes",
	Long: `qrfatura reads the GIB QR code embedded in Turkish e-invoice PDFs
(e-Fatura, e-Arşiv) and turns it into structured invoice data.

Single documents can be scanned to JSON, whole folders can be processed
in bulk with supplier resolution against a local registry, and the
registry itself can be inspected and maintained from the command line.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("qrfatura CLI executed")

		fmt.Println("Welcome to qrfatura!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
