package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	applog "github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// Options configures the sqlite connection
type Options struct {
	Path              string
	LogQueries        bool
	EnableWAL         bool
	EnableForeignKeys bool
}

// Initialize creates a new database connection with the provided configuration
func Initialize(opts Options) (*DB, error) {
	inMemory := opts.Path == "" || strings.Contains(opts.Path, ":memory:")

	if !inMemory {
		dir := filepath.Dir(opts.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	logLevel := logger.Error
	if opts.LogQueries {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	// Every connection to :memory: opens its own empty database
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(4)
		sqlDB.SetMaxOpenConns(8)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL && !inMemory {
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if opts.EnableForeignKeys {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is working
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Models lists every persisted model in migration order
func Models() []any {
	return []any{
		&models.Voice{},
		&models.Story{},
		&models.Chunk{},
	}
}

// AutoMigrate runs GORM auto migration for the provided models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	applog.StdLogger().Debugf("Migrated %d model(s)", len(models))
	return nil
}

// Migrate migrates every model in Models
func (db *DB) Migrate() error {
	return db.AutoMigrate(Models()...)
}

// Tables returns the table names of Models in migration order
func (db *DB) Tables() ([]string, error) {
	tables := make([]string, 0, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db.DB}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		tables = append(tables, stmt.Schema.Table)
	}
	return tables, nil
}

// PendingMigrations returns the tables of Models that do not exist yet
func (db *DB) PendingMigrations() ([]string, error) {
	tables, err := db.Tables()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, table := range tables {
		if !db.DB.Migrator().HasTable(table) {
			pending = append(pending, table)
		}
	}
	return pending, nil
}
