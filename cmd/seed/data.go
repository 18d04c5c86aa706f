// cmd/seed/data.go
package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// Shared defaults: the platform list everyone starts from and a starter
// department set. Users extend both with personal rows.
var defaultPlatforms = []string{"ebay", "etsy", "vinted", "no platform"}

var starterDepartments = []string{
	"Clothing",
	"Shoes",
	"Media",
	"Electronics",
	"Home Goods",
	"Collectibles",
}

func seedData(c *cli.Context) error {
	db := dbFrom(c)

	for _, name := range defaultPlatforms {
		_, err := db.ExecContext(c.Context, `
			INSERT INTO sale_platforms (id, name, is_default, owner_id, created_at)
			VALUES ($1, $2, TRUE, NULL, NOW())
			ON CONFLICT DO NOTHING`,
			uuid.New(), name)
		if err != nil {
			return fmt.Errorf("seed platform %q: %w", name, err)
		}
	}
	log.Printf("seeded %d default platforms", len(defaultPlatforms))

	for _, name := range starterDepartments {
		_, err := db.ExecContext(c.Context, `
			INSERT INTO departments (id, owner_id, name, is_active, created_at)
			VALUES ($1, NULL, $2, TRUE, NOW())
			ON CONFLICT DO NOTHING`,
			uuid.New(), name)
		if err != nil {
			return fmt.Errorf("seed department %q: %w", name, err)
		}
	}
	log.Printf("seeded %d shared departments", len(starterDepartments))

	return nil
}
