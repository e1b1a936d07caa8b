package bulk

import (
	"context"
	"strings"

	"qrfatura/pkg/models"
)

// PropagateSupplierName renames the supplier on every batch item sharing the
// given tax identifier and returns the new list.
//
// The rename is persisted through the resolver first, but only when both the
// identifier and the name are non-empty and the name is not the placeholder
// sentinel; a persistence failure is logged and never blocks the in-memory
// propagation. Every updated item is revalidated afterwards.
func (o *Orchestrator) PropagateSupplierName(ctx context.Context, items []Item, taxID, name, tenantID string) []Item {
	taxID = strings.TrimSpace(taxID)
	name = strings.Join(strings.Fields(name), " ")

	if o.resolver != nil && taxID != "" && name != "" && name != models.PlaceholderSupplierName {
		if err := o.resolver.RenameSupplierByTaxID(ctx, tenantID, taxID, name); err != nil {
			o.log.Warn().
				Str("tax_id", taxID).
				Err(err).
				Msg("Supplier rename persistence failed, propagating in memory only")
		}
	}

	out := make([]Item, len(items))
	copy(out, items)

	if taxID == "" {
		return out
	}

	for idx := range out {
		if out[idx].TaxID != taxID {
			continue
		}
		out[idx].ApplyEdit(func(item *Item) {
			item.SupplierName = name
		})
	}
	return out
}
