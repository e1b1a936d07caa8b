package bulk

import (
	"context"
	"errors"
	"testing"

	"qrfatura/pkg/models"
)

func propagationItems() []Item {
	make3 := func(fileName, taxID, supplier string) Item {
		item := NewItem(fileName, nil)
		item.Status = StatusQRSuccess
		item.InvoiceNumber = "FTR-" + fileName
		item.InvoiceDate = "2025-12-10"
		item.SupplierName = supplier
		item.TaxID = taxID
		item.TotalAmount = "100,00"
		item.Validate()
		return item
	}
	return []Item{
		make3("a.pdf", "9876543210", models.PlaceholderSupplierName),
		make3("b.pdf", "1234567890", "Başka Firma Ltd."),
		make3("c.pdf", "9876543210", models.PlaceholderSupplierName),
	}
}

func TestPropagateSupplierNameUpdatesMatchingItems(t *testing.T) {
	resolver := newFakeResolver()
	resolver.suppliers["tenant-1|9876543210"] = &models.Supplier{
		ID: 1, TenantID: "tenant-1", TaxID: "9876543210", Name: models.PlaceholderSupplierName,
	}
	orchestrator := New(nil, resolver, nil, Config{})
	items := propagationItems()

	out := orchestrator.PropagateSupplierName(context.Background(), items, "9876543210", "Acme Ltd", "tenant-1")

	if out[0].SupplierName != "Acme Ltd" || out[2].SupplierName != "Acme Ltd" {
		t.Errorf("matching items not renamed: %q, %q", out[0].SupplierName, out[2].SupplierName)
	}
	if out[1].SupplierName != "Başka Firma Ltd." {
		t.Errorf("unrelated item renamed to %q", out[1].SupplierName)
	}
	// The input slice is left untouched.
	if items[0].SupplierName != models.PlaceholderSupplierName {
		t.Error("input slice mutated")
	}
	if len(resolver.renames) != 1 || resolver.renames[0] != "9876543210=Acme Ltd" {
		t.Errorf("persisted renames = %v", resolver.renames)
	}
}

func TestPropagateSupplierNameRevalidates(t *testing.T) {
	orchestrator := New(nil, nil, nil, Config{})
	item := NewItem("a.pdf", nil)
	item.Status = StatusQRFailed
	item.InvoiceNumber = "FTR001"
	item.InvoiceDate = "2025-12-10"
	item.TaxID = "9876543210"
	item.TotalAmount = "100,00"
	item.Validate()
	if item.IsValid {
		t.Fatal("item without supplier name must start invalid")
	}

	out := orchestrator.PropagateSupplierName(context.Background(), []Item{item}, "9876543210", "Acme Ltd", "")

	if !out[0].IsValid {
		t.Errorf("expected item to become valid, errors: %v", out[0].ValidationErrors)
	}
	if out[0].Status != StatusReady {
		t.Errorf("Status = %q, want ready", out[0].Status)
	}
}

func TestPropagatePlaceholderNameNotPersisted(t *testing.T) {
	resolver := newFakeResolver()
	orchestrator := New(nil, resolver, nil, Config{})
	items := propagationItems()

	out := orchestrator.PropagateSupplierName(context.Background(), items, "1234567890", models.PlaceholderSupplierName, "tenant-1")

	if len(resolver.renames) != 0 {
		t.Errorf("placeholder name must never be persisted, got renames %v", resolver.renames)
	}
	// The in-memory list still reflects the edit.
	if out[1].SupplierName != models.PlaceholderSupplierName {
		t.Errorf("SupplierName = %q, want in-memory propagation", out[1].SupplierName)
	}
}

func TestPropagatePersistenceFailureStillPropagates(t *testing.T) {
	resolver := newFakeResolver()
	resolver.renameErr = errors.New("database locked")
	orchestrator := New(nil, resolver, nil, Config{})

	out := orchestrator.PropagateSupplierName(context.Background(), propagationItems(), "9876543210", "Acme Ltd", "tenant-1")

	if out[0].SupplierName != "Acme Ltd" || out[2].SupplierName != "Acme Ltd" {
		t.Error("persistence failure must not block in-memory propagation")
	}
}

func TestPropagateEmptyTaxIDIsNoOp(t *testing.T) {
	resolver := newFakeResolver()
	orchestrator := New(nil, resolver, nil, Config{})
	items := propagationItems()

	out := orchestrator.PropagateSupplierName(context.Background(), items, "", "Acme Ltd", "tenant-1")

	for idx := range out {
		if out[idx].SupplierName != items[idx].SupplierName {
			t.Errorf("item %d renamed on empty tax ID", idx)
		}
	}
	if len(resolver.renames) != 0 {
		t.Errorf("renames persisted on empty tax ID: %v", resolver.renames)
	}
}
