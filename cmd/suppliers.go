package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"qrfatura/internal/config"
	"qrfatura/internal/database"
	"qrfatura/internal/logger"
	"qrfatura/pkg/models"
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Inspect and maintain the supplier registry",
	Long: `Inspect and maintain the tax-identifier-keyed supplier registry that
bulk processing resolves invoice suppliers against.

Suppliers are created automatically during bulk processing; these commands
cover the manual follow-up: renaming placeholder entries, classifying
suppliers as subcontractors or invoice companies, and deactivating stale
records.`,
}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all suppliers of a tenant",
	Example: `  qrfatura suppliers list --tenant firma-a

  # Filter by name or tax identifier
  qrfatura suppliers list --tenant firma-a --search yapı`,
	RunE: runSuppliersList,
}

var suppliersRenameCmd = &cobra.Command{
	Use:     "rename [tax-id] [new-name]",
	Short:   "Rename a supplier by tax identifier",
	Example: `  qrfatura suppliers rename 1234567890 "Yılmaz İnşaat A.Ş." --tenant firma-a`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSuppliersRename,
}

var suppliersClassifyCmd = &cobra.Command{
	Use:   "classify [tax-id] [classification]",
	Short: "Set a supplier's classification",
	Long: fmt.Sprintf(`Set a supplier's classification. Valid values:
  %s, %s, %s`,
		models.ClassificationPending,
		models.ClassificationSubcontractor,
		models.ClassificationInvoiceCompany),
	Example: `  qrfatura suppliers classify 1234567890 subcontractor --tenant firma-a`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSuppliersClassify,
}

var suppliersDeactivateCmd = &cobra.Command{
	Use:     "deactivate [tax-id]",
	Short:   "Deactivate a supplier record",
	Example: `  qrfatura suppliers deactivate 1234567890 --tenant firma-a`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSuppliersDeactivate,
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
	suppliersCmd.AddCommand(suppliersListCmd)
	suppliersCmd.AddCommand(suppliersRenameCmd)
	suppliersCmd.AddCommand(suppliersClassifyCmd)
	suppliersCmd.AddCommand(suppliersDeactivateCmd)

	suppliersCmd.PersistentFlags().String("tenant", "", "Tenant (firm) identifier (default: TENANT_ID env)")
	suppliersListCmd.Flags().String("search", "", "Filter by name or tax identifier")
}

// openSupplierStore resolves the tenant and opens the registry database.
func openSupplierStore(cmd *cobra.Command) (*database.Store, string, func(), error) {
	tenantID, _ := cmd.Flags().GetString("tenant")

	cfg, err := config.Load()
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if tenantID == "" {
		tenantID = cfg.TenantID
	}
	if tenantID == "" {
		return nil, "", nil, fmt.Errorf("tenant identifier required: set --tenant or TENANT_ID")
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open database: %w", err)
	}

	return database.NewStore(db), tenantID, func() { db.Close() }, nil
}

func runSuppliersList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("suppliers")

	store, tenantID, closeDB, err := openSupplierStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	search, _ := cmd.Flags().GetString("search")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var suppliers []models.Supplier
	if search != "" {
		suppliers, err = store.SearchSuppliers(ctx, tenantID, search)
	} else {
		suppliers, err = store.ListSuppliers(ctx, tenantID)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list suppliers")
		return fmt.Errorf("failed to list suppliers: %w", err)
	}

	if len(suppliers) == 0 {
		fmt.Println("Kayıtlı tedarikçi bulunamadı.")
		return nil
	}

	fmt.Printf("%-12s  %-40s  %-16s  %s\n", "VKN/TCKN", "ÜNVAN", "SINIF", "DURUM")
	for _, supplier := range suppliers {
		status := "aktif"
		if !supplier.Active {
			status = "pasif"
		}
		fmt.Printf("%-12s  %-40s  %-16s  %s\n",
			supplier.TaxID, supplier.Name, supplier.Classification, status)
	}
	fmt.Printf("\nToplam: %d tedarikçi\n", len(suppliers))

	return nil
}

func runSuppliersRename(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("suppliers")

	store, tenantID, closeDB, err := openSupplierStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	taxID, newName := args[0], args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.RenameSupplierByTaxID(ctx, tenantID, taxID, newName); err != nil {
		if errors.Is(err, database.ErrSupplierNotFound) {
			return fmt.Errorf("no supplier with tax ID %s", taxID)
		}
		log.Error().Err(err).Str("tax_id", taxID).Msg("Failed to rename supplier")
		return fmt.Errorf("failed to rename supplier: %w", err)
	}

	fmt.Printf("Tedarikçi güncellendi: %s -> %s\n", taxID, newName)
	return nil
}

func runSuppliersClassify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("suppliers")

	store, tenantID, closeDB, err := openSupplierStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	taxID, classification := args[0], args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.SetSupplierClassification(ctx, tenantID, taxID, classification); err != nil {
		if errors.Is(err, database.ErrSupplierNotFound) {
			return fmt.Errorf("no supplier with tax ID %s", taxID)
		}
		log.Error().Err(err).Str("tax_id", taxID).Msg("Failed to classify supplier")
		return fmt.Errorf("failed to classify supplier: %w", err)
	}

	fmt.Printf("Tedarikçi sınıflandırıldı: %s -> %s\n", taxID, classification)
	return nil
}

func runSuppliersDeactivate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("suppliers")

	store, tenantID, closeDB, err := openSupplierStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	taxID := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.SetSupplierActive(ctx, tenantID, taxID, false); err != nil {
		if errors.Is(err, database.ErrSupplierNotFound) {
			return fmt.Errorf("no supplier with tax ID %s", taxID)
		}
		log.Error().Err(err).Str("tax_id", taxID).Msg("Failed to deactivate supplier")
		return fmt.Errorf("failed to deactivate supplier: %w", err)
	}

	fmt.Printf("Tedarikçi pasife alındı: %s\n", taxID)
	return nil
}
