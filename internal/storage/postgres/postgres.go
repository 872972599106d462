// Package postgres implements storage.Backend on PostgreSQL through the GORM
// backend. When no DB is injected it connects with the db.* settings.
package postgres

import (
	"fmt"

	"github.com/OCAP2/objectives/internal/database"
	"github.com/OCAP2/objectives/internal/logging"
	"github.com/OCAP2/objectives/internal/storage"
	gormstorage "github.com/OCAP2/objectives/internal/storage/gorm"
	"github.com/OCAP2/objectives/pkg/core"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend connects lazily in Init and delegates to the GORM backend.
type Backend struct {
	deps  Dependencies
	inner *gormstorage.Backend
}

// New creates a new Postgres storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// Init connects when needed, migrates the schema and starts the writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDB()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.inner = gormstorage.New(gormstorage.Dependencies{
		DB:         b.deps.DB,
		LogManager: b.deps.LogManager,
	})
	if err := b.inner.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.deps.LogManager.WriteLog("postgres:Init", "Database setup complete", "INFO")
	return nil
}

func (b *Backend) Close() error {
	if b.inner == nil {
		return nil
	}
	return b.inner.Close()
}

func (b *Backend) Save(s *core.Session) error {
	if b.inner == nil {
		return fmt.Errorf("postgres backend not initialized")
	}
	return b.inner.Save(s)
}

func (b *Backend) Load(mapName string) (*core.Session, error) {
	if b.inner == nil {
		return nil, storage.ErrNoSession
	}
	return b.inner.Load(mapName)
}

// RecordTransition drops transitions raised before Init.
func (b *Backend) RecordTransition(t *core.Transition) error {
	if b.inner == nil {
		return nil
	}
	return b.inner.RecordTransition(t)
}
