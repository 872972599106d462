// Package memory keeps save-state snapshots in memory and writes one JSON
// file per map, optionally gzip compressed.
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OCAP2/objectives/internal/config"
	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/pkg/core"
)

// Backend stores snapshots in memory and mirrors them to disk
type Backend struct {
	cfg      config.MemoryConfig
	sessions map[string]*core.Session // keyed by map
	latest   *core.Session
	lastPath string
	mu       sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		sessions: make(map[string]*core.Session),
	}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

// Save replaces the snapshot of s.Map and writes it to disk when an output
// directory is configured.
func (b *Backend) Save(s *core.Session) error {
	if s == nil {
		return nil
	}
	cp := cloneSession(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[s.Map] = cp
	b.latest = cp

	if b.cfg.OutputDir == "" {
		return nil
	}
	path := b.path(s.Map, b.cfg.CompressOutput)
	if err := writeSession(path, cp, b.cfg.CompressOutput); err != nil {
		return err
	}
	b.lastPath = path
	return nil
}

// Load returns the snapshot saved for mapName, reading it back from disk
// when it was written by an earlier process.
func (b *Backend) Load(mapName string) (*core.Session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if mapName == "" {
		if b.latest == nil {
			return nil, storage.ErrNoSession
		}
		return cloneSession(b.latest), nil
	}
	if s, ok := b.sessions[mapName]; ok {
		return cloneSession(s), nil
	}
	if b.cfg.OutputDir == "" {
		return nil, storage.ErrNoSession
	}

	for _, compressed := range []bool{b.cfg.CompressOutput, !b.cfg.CompressOutput} {
		s, err := readSession(b.path(mapName, compressed), compressed)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return s, err
	}
	return nil, storage.ErrNoSession
}

// LastSavePath returns the file written by the most recent Save.
func (b *Backend) LastSavePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastPath
}

func (b *Backend) path(mapName string, compressed bool) string {
	name := fileName(mapName) + ".json"
	if compressed {
		name += ".gz"
	}
	return filepath.Join(b.cfg.OutputDir, name)
}

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

func fileName(mapName string) string {
	if mapName == "" {
		return "session"
	}
	return "session_" + fileNameReplacer.Replace(mapName)
}

func writeSession(path string, s *core.Session, compressed bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := encodeSession(f, s, compressed); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// encodeSession writes s as JSON, gzipped when compressed. The gzip trailer
// is only written on Close, so its error is returned too.
func encodeSession(w io.Writer, s *core.Session, compressed bool) error {
	if !compressed {
		if err := json.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		return nil
	}
	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(s); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

func readSession(path string, compressed bool) (*core.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}
	var s core.Session
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func cloneSession(s *core.Session) *core.Session {
	cp := *s
	cp.Objectives = make([]core.Objective, len(s.Objectives))
	for i := range s.Objectives {
		cp.Objectives[i] = s.Objectives[i].Clone()
	}
	return &cp
}
