package infra

import (
	"fmt"

	"github.com/Orbeng/engser/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection for the given driver ("postgres" or
// "sqlite"), migrates the schema and applies the idempotent SQL patches GORM
// tags cannot express.
//
// TranslateError is enabled so unique and foreign-key violations surface as
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated on both dialects.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// A single connection serializes writers; shared-cache in-memory
		// databases otherwise fail with "database table is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables and then applies schema patches.
// Safe to call repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Service{},
		&model.Quote{},
		&model.QuoteItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags do not cover.
// Statements must be valid on both postgres and sqlite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// upcoming deadlines: WHERE expiry_date BETWEEN … ORDER BY expiry_date
		{"services status/expiry index",
			`CREATE INDEX IF NOT EXISTS idx_services_status_expiry ON services (status, expiry_date)`},
		// quote listing: ORDER BY created_at DESC, id DESC
		{"quotes listing index",
			`CREATE INDEX IF NOT EXISTS idx_quotes_created_id ON quotes (created_at DESC, id DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// ExpectedTables lists the tables the application relies on.
var ExpectedTables = []string{"users", "companies", "services", "quotes", "quote_items"}
