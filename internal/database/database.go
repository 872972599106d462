package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OCAP2/objectives/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN is the shared in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

// Manager handles database connections and operations.
type Manager struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool
	SqliteFilePath  string
	Logger          zerolog.Logger
}

// NewManager creates a new database manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect establishes a database connection, falling back to SQLite if Postgres fails.
func (m *Manager) Connect() error {
	var err error

	m.DB, err = GetPostgresDB()
	if err == nil {
		m.SqlDB, err = m.DB.DB()
		if err == nil {
			err = m.SqlDB.Ping()
		}
	}
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		return m.useSqlite()
	}

	m.Logger.Info().Msg("Connected to database")
	m.SqlDB.SetMaxOpenConns(10)
	m.IsValid = true
	return nil
}

func (m *Manager) useSqlite() error {
	var err error
	m.ShouldSaveLocal = true
	m.DB, err = GetSqliteDB(m.SqliteFilePath)
	if err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to get local SQLite DB: %w", err)
	}
	if m.SqlDB, err = m.DB.DB(); err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if m.SqliteFilePath == "" {
		m.Logger.Info().Msg("Using local SQLite DB in memory")
	} else {
		m.Logger.Info().Str("path", m.SqliteFilePath).Msg("Using local SQLite DB")
	}
	m.IsValid = true
	return nil
}

// Setup migrates the save-state schema.
func (m *Manager) Setup() error {
	if m.DB == nil {
		return fmt.Errorf("db not connected")
	}
	m.Logger.Info().Msg("Migrating schema")
	if err := Migrate(m.DB); err != nil {
		m.IsValid = false
		return err
	}
	m.Logger.Info().Msg("Database setup complete")
	return nil
}

// Migrate creates or updates every save-state table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.Models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// PostgresDSN builds the connection string from the db.* config keys.
func PostgresDSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
}

// GetPostgresDB opens the configured Postgres database.
func GetPostgresDB() (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDB opens a SQLite database at path, or the shared in-memory
// database when path is empty.
func GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}

// DumpMemoryToDisk vacuums the manager's database to SqliteFilePath.
func (m *Manager) DumpMemoryToDisk() error {
	start := time.Now()
	if err := DumpMemoryDBToDisk(m.DB, m.SqliteFilePath); err != nil {
		return err
	}
	m.Logger.Debug().Dur("duration", time.Since(start)).Msg("Dumped memory DB to disk")
	return nil
}

// DumpMemoryDBToDisk vacuums db to a disk file, replacing any previous dump.
func DumpMemoryDBToDisk(db *gorm.DB, sqliteFilePath string) error {
	if sqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	if _, err := os.Stat(sqliteFilePath); err == nil {
		if err := os.Remove(sqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %w", err)
		}
	}

	if err := db.Exec("VACUUM INTO ?", sqliteFilePath).Error; err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %w", err)
	}
	return nil
}

// RestoreDiskToMemory copies every save-state table from a previous dump into
// db. Rows already present are kept. db must be migrated first.
func RestoreDiskToMemory(db *gorm.DB, sqliteFilePath string) error {
	if _, err := os.Stat(sqliteFilePath); err != nil {
		return fmt.Errorf("dump file not readable: %w", err)
	}

	// ATTACH is per connection, so every statement runs on the same one.
	return db.Connection(func(conn *gorm.DB) error {
		tx := func() *gorm.DB { return conn.Session(&gorm.Session{}) }

		if err := tx().Exec("ATTACH DATABASE ? AS dump", sqliteFilePath).Error; err != nil {
			return fmt.Errorf("error attaching dump: %w", err)
		}
		defer tx().Exec("DETACH DATABASE dump")

		for _, m := range model.Models {
			stmt := &gorm.Statement{DB: tx()}
			if err := stmt.Parse(m); err != nil {
				return fmt.Errorf("error parsing model: %w", err)
			}
			table := stmt.Schema.Table

			var present int64
			if err := tx().Raw("SELECT count(*) FROM dump.sqlite_master WHERE type = 'table' AND name = ?", table).
				Scan(&present).Error; err != nil {
				return fmt.Errorf("error reading dump schema: %w", err)
			}
			if present == 0 {
				continue
			}

			cols := `"` + strings.Join(stmt.Schema.DBNames, `", "`) + `"`
			copySQL := fmt.Sprintf(`INSERT OR IGNORE INTO main."%s" (%s) SELECT %s FROM dump."%s"`, table, cols, cols, table)
			if err := tx().Exec(copySQL).Error; err != nil {
				return fmt.Errorf("error restoring %s: %w", table, err)
			}
		}
		return nil
	})
}
