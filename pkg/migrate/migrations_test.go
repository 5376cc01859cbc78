package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LeDucTai-11/MyStore-BE/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestOrderRequestsMigrationGuardsPendingRequests(t *testing.T) {
	assertContains(t, readMigration(t, "create_order_requests"), []string{
		"CREATE TABLE IF NOT EXISTS order_requests",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_order_requests_pending",
		"WHERE status = 'PENDING'",
		"CHECK (type IN ('CREATE', 'CANCEL'))",
		"DROP TABLE IF EXISTS order_requests",
	})
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"), []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CHECK (payment_method IN ('COD', 'BANKING'))",
		"CHECK (quantity > 0)",
		"order_id uuid NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	})
}

func TestVouchersMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_vouchers"), []string{
		"CHECK (quantity >= 0)",
		"CHECK (end_date > start_date)",
		"idx_voucher_redemptions_voucher_user ON voucher_redemptions (voucher_id, user_id)",
		"DROP TABLE IF EXISTS vouchers",
	})
}

func TestCatalogMigrationKeepsStockNonNegative(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog"), []string{
		"CREATE TABLE IF NOT EXISTS product_stores",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CONSTRAINT product_stores_quantity_check CHECK (quantity >= 0)",
	})
}
