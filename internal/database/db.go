// Package database is the sqlite-backed durable side of the pipeline: the
// tenant-scoped supplier registry (the supplier identity resolver contract)
// and the sink for committed invoice records.
package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	tenant_id      TEXT NOT NULL,
	tax_id         TEXT NOT NULL,
	name           TEXT NOT NULL,
	classification TEXT NOT NULL DEFAULT 'pending',
	active         INTEGER NOT NULL DEFAULT 1,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(tenant_id, tax_id)
);

CREATE TABLE IF NOT EXISTS invoices (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	tenant_id          TEXT NOT NULL,
	supplier_id        INTEGER REFERENCES suppliers(id),
	invoice_number     TEXT NOT NULL,
	invoice_date       TEXT NOT NULL,
	tax_id             TEXT NOT NULL,
	supplier_name      TEXT NOT NULL,
	goods_total        REAL,
	vat_amount         REAL,
	withholding_amount REAL,
	total_amount       REAL,
	currency           TEXT NOT NULL DEFAULT '',
	ettn               TEXT NOT NULL DEFAULT '',
	raw_qr             TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(tenant_id, tax_id, invoice_number)
);
`

// Open opens (creating if necessary) the sqlite database at path and applies
// the schema. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}
