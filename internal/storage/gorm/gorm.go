// Package gormstorage implements storage.Backend on top of any GORM dialect.
// Snapshots are written synchronously; transitions are queued and drained by
// a background writer.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/objectives/internal/database"
	"github.com/OCAP2/objectives/internal/logging"
	"github.com/OCAP2/objectives/internal/model"
	"github.com/OCAP2/objectives/internal/model/convert"
	"github.com/OCAP2/objectives/internal/queue"
	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued transitions are written.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

// Backend implements storage.Backend and storage.TransitionRecorder.
type Backend struct {
	deps        Dependencies
	transitions *queue.Queue[model.Transition]
	stopChan    chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:        deps,
		transitions: queue.New[model.Transition](),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the transition writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database configured")
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		b.deps.LogManager.WriteLog("gorm:Init", err.Error(), "ERROR")
		return err
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the writer and flushes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.stopOnce.Do(func() {
		close(b.stopChan)
		<-b.done
	})
	return b.Flush()
}

// Save inserts the snapshot with all its objectives in one transaction.
func (b *Backend) Save(s *core.Session) error {
	if s == nil || b.deps.DB == nil {
		return nil
	}
	row, err := convert.SessionToModel(*s)
	if err != nil {
		return err
	}
	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// Load returns the newest snapshot for mapName.
func (b *Backend) Load(mapName string) (*core.Session, error) {
	if b.deps.DB == nil {
		return nil, storage.ErrNoSession
	}

	q := b.deps.DB.
		Preload("Objectives", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("saved_at DESC").Order("id DESC")
	if mapName != "" {
		q = q.Where("map = ?", mapName)
	}

	var row model.Session
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s, err := convert.SessionToCore(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordTransition queues a history row for the background writer.
func (b *Backend) RecordTransition(t *core.Transition) error {
	if t == nil {
		return nil
	}
	b.transitions.Push(convert.TransitionToModel(*t))
	return nil
}

// Pending returns the number of transitions not yet written.
func (b *Backend) Pending() int {
	return b.transitions.Len()
}

// Flush writes every queued transition now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return nil
	}
	return writeQueue(b.deps.DB, b.transitions, "transitions", b.deps.LogManager.WriteLog)
}

// Transitions returns the recorded history of mapName, oldest first.
func (b *Backend) Transitions(mapName string) ([]model.Transition, error) {
	var rows []model.Transition
	q := b.deps.DB.Order("time ASC").Order("id ASC")
	if mapName != "" {
		q = q.Where("map = ?", mapName)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	return rows, nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return tx.Commit().Error
}

func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}
