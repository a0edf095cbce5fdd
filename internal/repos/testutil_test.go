package repos

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

// testDB opens a throwaway sqlite database per test. The schema is the same
// AutoMigrate set the postgres service uses.
func testDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "citewatch_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&types.User{},
		&types.MonitoringEntry{},
		&types.CitationCheckRecord{},
		&types.Notification{},
	); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}
