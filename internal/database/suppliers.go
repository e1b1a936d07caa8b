package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"qrfatura/internal/logger"
	"qrfatura/pkg/models"
)

// ErrSupplierNotFound is returned when no supplier matches the given
// (tenant, tax id) pair.
var ErrSupplierNotFound = errors.New("supplier not found")

// Store provides tenant-scoped supplier registry operations over sqlite.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewStore creates a Store over an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		log: logger.WithComponent("supplier-store"),
	}
}

// FindOrCreateSupplier resolves a supplier identity by tax id within a tenant.
//
// An existing record wins with its stored name even when the observed name
// differs, unless the stored name is the placeholder sentinel, in which case
// a non-placeholder observed name replaces it. An absent record is created
// with the observed name (or the placeholder when none was observed) and
// classification "pending".
func (s *Store) FindOrCreateSupplier(ctx context.Context, tenantID, taxID, observedName string) (*models.Supplier, error) {
	observedName = NormalizeName(observedName)

	existing, err := s.GetSupplierByTaxID(ctx, tenantID, taxID)
	if err != nil && !errors.Is(err, ErrSupplierNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.IsPlaceholderName() && observedName != "" && observedName != models.PlaceholderSupplierName {
			if err := s.RenameSupplierByTaxID(ctx, tenantID, taxID, observedName); err != nil {
				return nil, err
			}
			existing.Name = observedName
		}
		return existing, nil
	}

	name := observedName
	if name == "" {
		name = models.PlaceholderSupplierName
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (tenant_id, tax_id, name, classification, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		tenantID, taxID, name, models.ClassificationPending, now, now)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreateSupplier insert (taxID: %s) failed: %w", taxID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("FindOrCreateSupplier insert id: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Str("tax_id", taxID).
		Str("name", name).
		Msg("Supplier created")

	return &models.Supplier{
		ID:             id,
		TenantID:       tenantID,
		TaxID:          taxID,
		Name:           name,
		Classification: models.ClassificationPending,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// RenameSupplierByTaxID sets the display name of an existing supplier. It is
// only called on explicit human input; callers guard against empty and
// placeholder names.
func (s *Store) RenameSupplierByTaxID(ctx context.Context, tenantID, taxID, newName string) error {
	newName = NormalizeName(newName)
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET name = ?, updated_at = ? WHERE tenant_id = ? AND tax_id = ?`,
		newName, time.Now().UTC(), tenantID, taxID)
	if err != nil {
		return fmt.Errorf("RenameSupplierByTaxID (taxID: %s) failed: %w", taxID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("RenameSupplierByTaxID rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("RenameSupplierByTaxID (taxID: %s): %w", taxID, ErrSupplierNotFound)
	}
	return nil
}

// GetSupplierByTaxID fetches one supplier by its (tenant, tax id) key.
func (s *Store) GetSupplierByTaxID(ctx context.Context, tenantID, taxID string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.GetContext(ctx, &supplier, `
		SELECT id, tenant_id, tax_id, name, classification, active, created_at, updated_at
		FROM suppliers WHERE tenant_id = ? AND tax_id = ?`,
		tenantID, taxID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetSupplierByTaxID (taxID: %s): %w", taxID, ErrSupplierNotFound)
		}
		return nil, fmt.Errorf("GetSupplierByTaxID (taxID: %s) failed: %w", taxID, err)
	}
	return &supplier, nil
}

// ListSuppliers returns all suppliers of a tenant ordered by name.
func (s *Store) ListSuppliers(ctx context.Context, tenantID string) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.db.SelectContext(ctx, &suppliers, `
		SELECT id, tenant_id, tax_id, name, classification, active, created_at, updated_at
		FROM suppliers WHERE tenant_id = ? ORDER BY name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("ListSuppliers failed: %w", err)
	}
	return suppliers, nil
}

// SearchSuppliers returns the tenant's suppliers whose name or tax id
// contains the query. Names are compared case-insensitively with Turkish
// casing rules (so "iş" matches "İŞ").
func (s *Store) SearchSuppliers(ctx context.Context, tenantID, query string) ([]models.Supplier, error) {
	all, err := s.ListSuppliers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	needle := foldTurkish(strings.TrimSpace(query))
	matched := make([]models.Supplier, 0, len(all))
	for _, supplier := range all {
		if strings.Contains(foldTurkish(supplier.Name), needle) ||
			strings.Contains(supplier.TaxID, strings.TrimSpace(query)) {
			matched = append(matched, supplier)
		}
	}
	return matched, nil
}

// SetSupplierClassification updates a supplier's classification
// (pending / subcontractor / invoice-company).
func (s *Store) SetSupplierClassification(ctx context.Context, tenantID, taxID, classification string) error {
	switch classification {
	case models.ClassificationPending, models.ClassificationSubcontractor, models.ClassificationInvoiceCompany:
	default:
		return fmt.Errorf("invalid classification %q", classification)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET classification = ?, updated_at = ? WHERE tenant_id = ? AND tax_id = ?`,
		classification, time.Now().UTC(), tenantID, taxID)
	if err != nil {
		return fmt.Errorf("SetSupplierClassification (taxID: %s) failed: %w", taxID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetSupplierClassification (taxID: %s): %w", taxID, ErrSupplierNotFound)
	}
	return nil
}

// SetSupplierActive flips a supplier's activity flag.
func (s *Store) SetSupplierActive(ctx context.Context, tenantID, taxID string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET active = ?, updated_at = ? WHERE tenant_id = ? AND tax_id = ?`,
		active, time.Now().UTC(), tenantID, taxID)
	if err != nil {
		return fmt.Errorf("SetSupplierActive (taxID: %s) failed: %w", taxID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetSupplierActive (taxID: %s): %w", taxID, ErrSupplierNotFound)
	}
	return nil
}

// NormalizeName collapses internal whitespace and trims the edges of a
// supplier display name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

var turkishUpper = cases.Upper(language.Turkish)

func foldTurkish(s string) string {
	return turkishUpper.String(s)
}
