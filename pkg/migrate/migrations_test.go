package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tradelinkhq/tradelink-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_and_stock.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS stock_items",
		"CHECK (reserved_qty <= declared_qty)",
		"selling_countries TEXT[] NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_products_seller_is_active",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_orders_and_invoices.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS number_sequences",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS invoices",
		"order_number TEXT NOT NULL UNIQUE",
		"invoice_number TEXT NOT NULL UNIQUE",
		"order_id UUID UNIQUE REFERENCES orders(id)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRFQMigrationEnforcesOneResponsePerSeller(t *testing.T) {
	content := readMigration(t, "*_create_inquiries_and_rfqs.sql")

	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_rfq_responses_rfq_seller ON rfq_responses (rfq_id, seller_id)") {
		t.Fatalf("missing unique index on rfq_responses (rfq_id, seller_id)")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
