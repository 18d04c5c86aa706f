// cmd/seed/schema.go
package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

// The zero uuid stands in for "shared" inside the uniqueness indexes, since
// expression indexes cannot treat NULL owner ids as equal.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id uuid PRIMARY KEY,
		owner_id uuid,
		name text NOT NULL,
		is_active boolean NOT NULL DEFAULT TRUE,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS departments_scope_name_idx
		ON departments (COALESCE(owner_id, '00000000-0000-0000-0000-000000000000'::uuid), LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS categories (
		id uuid PRIMARY KEY,
		owner_id uuid,
		department_id uuid NOT NULL REFERENCES departments(id),
		name text NOT NULL,
		is_active boolean NOT NULL DEFAULT TRUE,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS categories_scope_name_idx
		ON categories (department_id, COALESCE(owner_id, '00000000-0000-0000-0000-000000000000'::uuid), LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS subcategories (
		id uuid PRIMARY KEY,
		owner_id uuid,
		category_id uuid NOT NULL REFERENCES categories(id),
		name text NOT NULL,
		is_active boolean NOT NULL DEFAULT TRUE,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS subcategories_scope_name_idx
		ON subcategories (category_id, COALESCE(owner_id, '00000000-0000-0000-0000-000000000000'::uuid), LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS sale_platforms (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		is_default boolean NOT NULL DEFAULT FALSE,
		owner_id uuid,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sale_platforms_scope_name_idx
		ON sale_platforms (COALESCE(owner_id, '00000000-0000-0000-0000-000000000000'::uuid), LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS inventory (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		title text NOT NULL,
		vendor text NOT NULL DEFAULT '',
		department_id uuid REFERENCES departments(id),
		category_id uuid REFERENCES categories(id),
		subcategory_id uuid REFERENCES subcategories(id),
		purchase_price double precision NOT NULL DEFAULT 0,
		purchase_date date,
		quantity_on_hand integer NOT NULL DEFAULT 1,
		receipt_path text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS inventory_owner_date_idx ON inventory (owner_id, purchase_date)`,
	`CREATE INDEX IF NOT EXISTS inventory_owner_title_idx ON inventory (owner_id, LOWER(TRIM(title)))`,

	`CREATE TABLE IF NOT EXISTS sales (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		item_title text NOT NULL,
		sale_price double precision NOT NULL DEFAULT 0,
		shipping_cost double precision NOT NULL DEFAULT 0,
		transaction_fees double precision NOT NULL DEFAULT 0,
		platform text NOT NULL DEFAULT 'none',
		sale_date date NOT NULL,
		purchase_price double precision NOT NULL DEFAULT 0,
		purchase_date date,
		inventory_id uuid REFERENCES inventory(id) ON DELETE SET NULL,
		receipt_path text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS sales_owner_date_idx ON sales (owner_id, sale_date)`,

	`CREATE TABLE IF NOT EXISTS refunds (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		item_label text NOT NULL DEFAULT '',
		amount double precision NOT NULL DEFAULT 0,
		refund_date date NOT NULL,
		sale_id uuid REFERENCES sales(id) ON DELETE SET NULL,
		receipt_path text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS refunds_owner_date_idx ON refunds (owner_id, refund_date)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		ledger_account text NOT NULL DEFAULT 'Other',
		vendor text NOT NULL DEFAULT '',
		description text NOT NULL DEFAULT '',
		amount double precision NOT NULL DEFAULT 0,
		date date NOT NULL,
		bank_account text NOT NULL DEFAULT '',
		sale_id uuid REFERENCES sales(id) ON DELETE SET NULL,
		receipt_path text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS expenses_owner_date_idx ON expenses (owner_id, date)`,

	`CREATE TABLE IF NOT EXISTS rebates (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		vendor text NOT NULL DEFAULT '',
		description text NOT NULL DEFAULT '',
		amount double precision NOT NULL DEFAULT 0,
		date date NOT NULL,
		bank_account text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS rebates_owner_date_idx ON rebates (owner_id, date)`,

	`CREATE TABLE IF NOT EXISTS analytics_groupings (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		department_id uuid NOT NULL REFERENCES departments(id),
		category_id uuid NOT NULL REFERENCES categories(id),
		subcategory_id uuid NOT NULL REFERENCES subcategories(id),
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
}

func createSchema(c *cli.Context) error {
	db := dbFrom(c)
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w\n%s", err, stmt)
		}
	}
	log.Printf("schema created (%d statements)", len(schemaStatements))
	return nil
}
