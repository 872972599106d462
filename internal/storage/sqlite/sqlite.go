// Package sqlitestorage implements storage.Backend on an SQLite database,
// in memory by default, with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend via composition.
package sqlitestorage

import (
	"fmt"
	"os"
	"time"

	"github.com/OCAP2/objectives/internal/database"
	"github.com/OCAP2/objectives/internal/logging"
	gormstorage "github.com/OCAP2/objectives/internal/storage/gorm"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	// Path is the live database file; empty keeps it in memory.
	Path         string
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	done     chan struct{}
	closed   bool
}

// New creates a new SQLite storage backend.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
		db:  db,
		cfg: cfg,
		log: logManager,
	}, nil
}

// Init initializes the embedded GORM backend, reloads the last dump into an
// in-memory database and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path == "" && b.cfg.DumpPath != "" {
		if _, err := os.Stat(b.cfg.DumpPath); err == nil {
			if err := database.RestoreDiskToMemory(b.db, b.cfg.DumpPath); err != nil {
				return fmt.Errorf("failed to restore %s: %w", b.cfg.DumpPath, err)
			}
			b.log.WriteLog("sqlite:Init", "Restored previous dump from "+b.cfg.DumpPath, "INFO")
		}
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, flushes the GORM backend, writes a final
// dump and closes the connection pool. An in-memory database is gone after
// this.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath != "" {
		if err := b.Dump(); err != nil {
			return err
		}
	}
	b.closed = true
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dump writes a point-in-time copy of the database to DumpPath.
func (b *Backend) Dump() error {
	return database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath)
}

func (b *Backend) dumpLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error flushing transitions: %v", err), "ERROR")
			}
			if err := b.Dump(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
