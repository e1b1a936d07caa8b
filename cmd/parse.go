package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qrfatura/internal/logger"
	"qrfatura/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [payload]",
	Short: "Parse a raw e-invoice QR payload into structured data",
	Long: `Parse a QR payload string that was already decoded (for example with
'qrfatura scan --raw', or from an external scanner) into structured invoice
data and print the result as JSON.

Pass "-" as the payload to read it from stdin.`,
	Example: `  # Parse a pipe-delimited payload
  qrfatura parse "1234567890|GIB2025000001234|10.12.2025|1.180,50|180,00"

  # Parse a payload from stdin
  cat payload.txt | qrfatura parse -

  # Save the result to a file
  qrfatura parse "$(qrfatura scan fatura.pdf --raw)" -o fatura.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")

	payload := args[0]
	if payload == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read payload from stdin")
			return fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		payload = string(data)
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return fmt.Errorf("empty payload")
	}

	log.Info().
		Int("payload_len", len(payload)).
		Msg("Parsing QR payload")

	parsed := parser.Parse(payload)
	if !parsed.HasCoreFields() {
		log.Warn().Msg("Payload did not match any known invoice layout")
	}

	return writeJSONOutput(parsed, outputPath, log)
}
