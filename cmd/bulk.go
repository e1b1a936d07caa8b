package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"qrfatura/internal/bulk"
	"qrfatura/internal/config"
	"qrfatura/internal/database"
	"qrfatura/internal/logger"
	"qrfatura/internal/qr"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk [folder-path]",
	Short: "Process all invoice PDFs in a folder in one batch",
	Long: `Process every PDF in the given folder: extract the QR code of each
document, parse the payload, resolve the supplier against the local registry
and validate the resulting invoice fields.

Files are processed in small concurrent chunks. A file whose QR code cannot
be read is reported for manual entry; it never aborts the batch. With
--commit every valid invoice is additionally persisted to the local database.

Optional environment variables:
  SUPPLIER_DB_PATH - SQLite database path (default: ./qrfatura.db)
  TENANT_ID        - Default tenant (firm) identifier
  BULK_BATCH_SIZE  - Number of files processed concurrently (default: 3)`,
	Example: `  # Process a folder of invoices
  qrfatura bulk ./faturalar --tenant firma-a

  # Persist every valid invoice to the database
  qrfatura bulk ./faturalar --tenant firma-a --commit

  # Dry run without touching the supplier registry
  qrfatura bulk ./faturalar --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().String("tenant", "", "Tenant (firm) identifier (default: TENANT_ID env)")
	bulkCmd.Flags().Bool("commit", false, "Persist valid invoices to the database")
	bulkCmd.Flags().Bool("dry-run", false, "Process files without touching the database")
	bulkCmd.Flags().Int("chunk-size", 0, "Files processed concurrently (default: BULK_BATCH_SIZE env)")
}

func runBulk(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("bulk")

	folderPath := args[0]
	tenantID, _ := cmd.Flags().GetString("tenant")
	commit, _ := cmd.Flags().GetBool("commit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")

	if commit && dryRun {
		return fmt.Errorf("--commit and --dry-run are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if tenantID == "" {
		tenantID = cfg.TenantID
	}
	if chunkSize <= 0 {
		chunkSize = cfg.BulkBatchSize
	}
	if !dryRun && tenantID == "" {
		return fmt.Errorf("tenant identifier required: set --tenant or TENANT_ID")
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	log.Info().
		Str("folder", folderPath).
		Str("tenant_id", tenantID).
		Bool("commit", commit).
		Bool("dry_run", dryRun).
		Int("chunk_size", chunkSize).
		Msg("Starting bulk processing")

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         TOPLU FATURA İŞLEME")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Klasör: %s\n", folderPath)
	if tenantID != "" {
		fmt.Printf("Firma: %s\n", tenantID)
	}
	if dryRun {
		fmt.Printf("Mod: Dry Run (veritabanı güncellenmez)\n")
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var resolver bulk.SupplierResolver
	var sink bulk.InvoiceSink
	if !dryRun {
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		store := database.NewStore(db)
		resolver = store
		sink = store
	}

	files, err := loadPDFFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to read PDF files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("Klasörde PDF dosyası bulunamadı.")
		return nil
	}

	fmt.Printf("%d PDF, %d'li gruplar halinde işleniyor...\n", len(files), chunkSize)
	fmt.Println()

	orchestrator := bulk.New(qr.NewExtractor(), resolver, sink, bulk.Config{ChunkSize: chunkSize})

	var printMu sync.Mutex
	items := orchestrator.ProcessBatch(ctx, files, bulk.Options{
		TenantID: tenantID,
		OnItemProcessed: func(item bulk.Item) {
			printMu.Lock()
			defer printMu.Unlock()
			printItemLine(item)
		},
	})

	if commit {
		fmt.Println()
		fmt.Println("Geçerli faturalar kaydediliyor...")
		items = orchestrator.CommitBatch(ctx, items, tenantID)
		for _, item := range items {
			if item.Status == bulk.StatusError {
				fmt.Printf("  %s: %s\n", item.FileName, item.ErrorMessage)
			}
		}
	}

	printBulkSummary(items, commit)

	stats := bulk.ComputeStats(items)
	log.Info().
		Int("total", stats.Total).
		Int("qr_success", stats.QRSuccess).
		Int("qr_failed", stats.QRFailed).
		Int("ready", stats.Ready).
		Msg("Bulk processing completed")

	return nil
}

// loadPDFFiles reads every PDF under the folder into memory as batch input.
func loadPDFFiles(folderPath string) ([]bulk.BulkFile, error) {
	var files []bulk.BulkFile

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, bulk.BulkFile{
			Name: filepath.Base(path),
			Data: data,
		})
		return nil
	})

	return files, err
}

// printItemLine prints one progress line per completed file.
func printItemLine(item bulk.Item) {
	status := "✅"
	detail := item.TotalAmount
	if detail != "" {
		detail = detail + " TL"
	}

	switch {
	case item.Status == bulk.StatusQRFailed:
		status = "❌"
		detail = item.ErrorMessage
	case !item.IsValid:
		status = "⚠️"
		detail = strings.Join(item.ValidationErrors, ", ")
	}

	fmt.Printf("%s - %s", item.FileName, status)
	if detail != "" {
		fmt.Printf(" (%s)", detail)
	}
	fmt.Println()
}

// printBulkSummary prints the aggregate batch figures.
func printBulkSummary(items []bulk.Item, committed bool) {
	stats := bulk.ComputeStats(items)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 SONUÇ")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Toplam dosya: %d\n", stats.Total)
	fmt.Printf("QR okunan: %d (%%%d)\n", stats.QRSuccess, stats.QRSuccessRate)
	if stats.QRFailed > 0 {
		fmt.Printf("QR okunamayan: %d\n", stats.QRFailed)
	}
	fmt.Printf("Kayda hazır: %d (%%%d)\n", stats.Ready, stats.ReadyRate)
	if stats.NeedsAttention > 0 {
		fmt.Printf("Manuel giriş gereken: %d\n", stats.NeedsAttention)
	}

	if committed {
		saved := 0
		failed := 0
		for _, item := range items {
			switch item.Status {
			case bulk.StatusSuccess:
				saved++
			case bulk.StatusError:
				failed++
			}
		}
		fmt.Printf("Kaydedilen fatura: %d\n", saved)
		if failed > 0 {
			fmt.Printf("Kaydedilemeyen: %d\n", failed)
		}
	}

	fmt.Println(strings.Repeat("=", 80))
}
