package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/mini_shop/internal/db"
)

// SQLiteDB returns a migrated database file private to the test.
func SQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "shop.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// PostgresDB connects to SHOP_TEST_DATABASE_URL and skips the test when it is unset.
func PostgresDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("SHOP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SHOP_TEST_DATABASE_URL is required for tests")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	truncate := func() {
		gdb.Exec("TRUNCATE TABLE shopping_carts, products, users RESTART IDENTITY CASCADE")
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
