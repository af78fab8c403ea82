package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teomanager/teomanager-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir failed validation: %v", err)
	}
}

func TestOrdersMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_lines",
		"CHECK (num_nonnulls(product_id, service_id) = 1)",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationPrincipalImageUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	checks := []string{
		"CHECK (stock >= 0)",
		"idx_product_images_principal",
		"ON product_images (product_id) WHERE is_principal",
		"ON service_images (service_id) WHERE is_principal",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matches %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
