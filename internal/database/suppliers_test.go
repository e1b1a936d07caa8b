package database

import (
	"context"
	"errors"
	"testing"

	"qrfatura/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestFindOrCreateSupplierCreates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	supplier, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "Yılmaz İnşaat A.Ş.")
	if err != nil {
		t.Fatalf("FindOrCreateSupplier: %v", err)
	}
	if supplier.Name != "Yılmaz İnşaat A.Ş." {
		t.Errorf("Name = %q", supplier.Name)
	}
	if supplier.Classification != models.ClassificationPending {
		t.Errorf("Classification = %q, want pending", supplier.Classification)
	}
	if !supplier.Active {
		t.Error("new supplier should be active")
	}
}

func TestFindOrCreateSupplierPrefersStoredName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "Yılmaz İnşaat A.Ş."); err != nil {
		t.Fatal(err)
	}

	// A freshly observed different name must not replace the stored one.
	supplier, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "YILMAZ INSAAT")
	if err != nil {
		t.Fatal(err)
	}
	if supplier.Name != "Yılmaz İnşaat A.Ş." {
		t.Errorf("stored name should win, got %q", supplier.Name)
	}
}

func TestFindOrCreateSupplierReplacesPlaceholder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Created without an observed name: gets the placeholder.
	supplier, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "")
	if err != nil {
		t.Fatal(err)
	}
	if supplier.Name != models.PlaceholderSupplierName {
		t.Fatalf("Name = %q, want placeholder", supplier.Name)
	}

	// A real observed name replaces the placeholder.
	supplier, err = store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "Demir Yapı Ltd.")
	if err != nil {
		t.Fatal(err)
	}
	if supplier.Name != "Demir Yapı Ltd." {
		t.Errorf("Name = %q, want observed name to replace placeholder", supplier.Name)
	}

	stored, err := store.GetSupplierByTaxID(ctx, "tenant-1", "1234567890")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "Demir Yapı Ltd." {
		t.Errorf("persisted Name = %q", stored.Name)
	}
}

func TestSuppliersAreTenantScoped(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "Firma A"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindOrCreateSupplier(ctx, "tenant-2", "1234567890", "Firma B"); err != nil {
		t.Fatal(err)
	}

	a, err := store.GetSupplierByTaxID(ctx, "tenant-1", "1234567890")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.GetSupplierByTaxID(ctx, "tenant-2", "1234567890")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Firma A" || b.Name != "Firma B" {
		t.Errorf("tenant isolation broken: %q / %q", a.Name, b.Name)
	}
}

func TestRenameSupplierByTaxID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "9876543210", "Eski Ünvan"); err != nil {
		t.Fatal(err)
	}
	if err := store.RenameSupplierByTaxID(ctx, "tenant-1", "9876543210", "Acme Ltd"); err != nil {
		t.Fatal(err)
	}

	supplier, err := store.GetSupplierByTaxID(ctx, "tenant-1", "9876543210")
	if err != nil {
		t.Fatal(err)
	}
	if supplier.Name != "Acme Ltd" {
		t.Errorf("Name = %q, want Acme Ltd", supplier.Name)
	}
}

func TestRenameSupplierNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.RenameSupplierByTaxID(context.Background(), "tenant-1", "0000000000", "X")
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestSearchSuppliersTurkishFolding(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "İstanbul Yapı"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567891", "Ankara Beton"); err != nil {
		t.Fatal(err)
	}

	// Lowercase dotted i must match the dotted capital İ under Turkish casing.
	matched, err := store.SearchSuppliers(ctx, "tenant-1", "istanbul")
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].Name != "İstanbul Yapı" {
		t.Errorf("SearchSuppliers = %+v, want only İstanbul Yapı", matched)
	}
}

func TestSetSupplierClassification(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.FindOrCreateSupplier(ctx, "tenant-1", "1234567890", "Taşeron Ltd."); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSupplierClassification(ctx, "tenant-1", "1234567890", models.ClassificationSubcontractor); err != nil {
		t.Fatal(err)
	}
	supplier, err := store.GetSupplierByTaxID(ctx, "tenant-1", "1234567890")
	if err != nil {
		t.Fatal(err)
	}
	if supplier.Classification != models.ClassificationSubcontractor {
		t.Errorf("Classification = %q", supplier.Classification)
	}

	if err := store.SetSupplierClassification(ctx, "tenant-1", "1234567890", "bogus"); err == nil {
		t.Error("expected error for invalid classification")
	}
}

func TestSaveInvoice(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	total := 1180.50
	rec := &InvoiceRecord{
		TenantID:      "tenant-1",
		InvoiceNumber: "GIB2025000001234",
		InvoiceDate:   "2025-12-10",
		TaxID:         "1234567890",
		SupplierName:  "Yılmaz İnşaat A.Ş.",
		TotalAmount:   &total,
		Currency:      "TRY",
	}
	if err := store.SaveInvoice(ctx, rec); err != nil {
		t.Fatalf("SaveInvoice: %v", err)
	}
	if rec.ID == 0 {
		t.Error("SaveInvoice did not set the record id")
	}

	// Duplicate (tenant, tax id, invoice number) must be rejected.
	if err := store.SaveInvoice(ctx, rec); err == nil {
		t.Error("expected unique constraint violation on duplicate commit")
	}

	count, err := store.CountInvoices(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountInvoices = %d, want 1", count)
	}
}
