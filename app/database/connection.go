// Package database owns the local journal store. The journal keeps a
// copy of committed sales, print jobs and drawer events so the terminal
// can list and reprint recent documents without the back office.
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"DataPos/app/config"
	"DataPos/app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDB returns the journal database instance
func GetDB() *gorm.DB {
	return db
}

// defaultSQLitePath places the journal file next to the config dir
func defaultSQLitePath() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("data", "journal.db")
		}
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}
	return filepath.Join(appData, "DataPos", "journal.db")
}

// buildPostgresDSN builds the DSN for a shared postgres journal
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	log.Printf("Journal database: postgres host=%s port=%d dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	return dsn
}

// Initialize opens the journal database per config. Driver "postgres"
// targets a shared instance; anything else uses the local sqlite file.
func Initialize(cfg *config.DatabaseConfig) error {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var err error
	if cfg != nil && cfg.Driver == "postgres" {
		db, err = gorm.Open(postgres.Open(buildPostgresDSN(cfg)), gormConfig)
	} else {
		path := defaultSQLitePath()
		if cfg != nil && cfg.Path != "" {
			path = cfg.Path
		}
		if mkErr := os.MkdirAll(filepath.Dir(path), 0755); mkErr != nil {
			return fmt.Errorf("failed to create journal directory: %w", mkErr)
		}
		log.Printf("Journal database: sqlite path=%s", path)
		db, err = gorm.Open(sqlite.Open(path), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to journal database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RunMigrations creates the journal tables
func RunMigrations() error {
	err := db.AutoMigrate(
		&models.JournalSale{},
		&models.PrintJob{},
		&models.DrawerEvent{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	createIndexes()

	return nil
}

// createIndexes creates indexes for the documents list queries
func createIndexes() {
	db.Exec("CREATE INDEX IF NOT EXISTS idx_journal_sales_created_at ON journal_sales(created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_print_jobs_created_at ON print_jobs(created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_drawer_events_session_id ON drawer_events(session_id)")
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes a function within a database transaction
func Transaction(fn func(*gorm.DB) error) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.Transaction(fn)
}
