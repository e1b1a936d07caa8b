package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"qrfatura/internal/logger"
	"qrfatura/internal/parser"
	"qrfatura/internal/qr"
	"qrfatura/pkg/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan [pdf-file]",
	Short: "Extract and parse the e-invoice QR code from a PDF",
	Long: `Scan a PDF invoice for its embedded GIB QR code, decode the payload
and parse it into structured invoice data.

Every page of the document is rendered at several scales and scanned for a
QR symbol; the first successful decode wins. The payload is then parsed
against the known e-invoice QR layouts (tagged text, pipe-delimited, JSON,
URL query) and the result is printed as JSON.`,
	Example: `  # Scan an invoice and print the parsed data to stdout
  qrfatura scan fatura.pdf

  # Save the parsed data to a JSON file
  qrfatura scan fatura.pdf -o fatura.json

  # Print only the raw decoded QR payload
  qrfatura scan fatura.pdf --raw

  # Scan a large document with a longer timeout
  qrfatura scan buyuk-fatura.pdf --timeout 120`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// ScanOutput is the JSON output structure of a single-document scan.
type ScanOutput struct {
	Invoice  models.InvoiceQRData `json:"invoice"`
	Metadata ScanMetadata         `json:"metadata"`
}

// ScanMetadata describes the processed document.
type ScanMetadata struct {
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size_bytes"`
	ProcessedAt time.Time `json:"processed_at"`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Bool("raw", false, "Print the raw QR payload instead of parsed JSON")
	scanCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	rawOnly, _ := cmd.Flags().GetBool("raw")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]

	log.Info().
		Str("file", pdfPath).
		Str("output", outputPath).
		Bool("raw", rawOnly).
		Int("timeout", timeoutSecs).
		Msg("Starting document scan")

	fileInfo, err := validatePDFPath(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createScanContext(timeoutSecs, log)
	defer cancel()

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", pdfPath).
			Msg("Failed to read PDF file")
		return fmt.Errorf("failed to read PDF file: %w", err)
	}

	extractor := qr.NewExtractor()

	startTime := time.Now()
	payload, err := extractor.ExtractFromPDF(ctx, data)
	if err != nil {
		return handleScanError(err, log)
	}

	log.Info().
		Int("payload_len", len(payload)).
		Dur("duration", time.Since(startTime)).
		Msg("QR code extracted")

	if rawOnly {
		fmt.Println(payload)
		return nil
	}

	parsed := parser.Parse(payload)
	output := ScanOutput{
		Invoice: parsed,
		Metadata: ScanMetadata{
			FileName:    filepath.Base(fileInfo.Name()),
			FileSize:    fileInfo.Size(),
			ProcessedAt: time.Now(),
		},
	}

	return writeJSONOutput(output, outputPath, log)
}

// validatePDFPath checks that the path points at a readable, non-empty file.
func validatePDFPath(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("PDF file not found")
			return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("Permission denied accessing PDF file")
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", pdfPath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", pdfPath).
			Msg("PDF file is empty")
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	return fileInfo, nil
}

// createScanContext creates a context with timeout and signal handling.
func createScanContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling scan")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleScanError maps extraction failures to user-friendly messages.
func handleScanError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Document scan failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, qr.ErrContextCanceled):
		return fmt.Errorf("scan timed out or was canceled. Try increasing --timeout")
	case errors.Is(err, qr.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, qr.ErrEmptyDocument):
		return fmt.Errorf("the PDF contains no pages")
	case errors.Is(err, qr.ErrNoQRCode):
		return fmt.Errorf("no QR code found in the document. The invoice may predate the QR requirement or the print quality may be too low")
	default:
		return fmt.Errorf("document scan failed: %w", err)
	}
}

// writeJSONOutput marshals the value and writes it to a file or stdout.
func writeJSONOutput(output interface{}, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
