package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/objectives/internal/database"
	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ storage.Backend            = (*Backend)(nil)
	_ storage.TransitionRecorder = (*Backend)(nil)
)

func TestSaveLoadAndFinalDump(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Path:     filepath.Join(dir, "live.db"),
		DumpPath: filepath.Join(dir, "dump.db"),
	}
	b, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	sess := &core.Session{
		ID:      "s1",
		Map:     "MAP07",
		SavedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Objectives: []core.Objective{
			{Seq: 1, Description: "Kill the Mancubi", Category: core.CategoryKill, Target: 8, MaxSkill: core.SkillHighest, Map: "MAP07", Required: true},
		},
	}
	require.NoError(t, b.Save(sess))
	require.NoError(t, b.RecordTransition(&core.Transition{Description: "Kill the Mancubi", Map: "MAP07", State: "active"}))

	got, err := b.Load("MAP07")
	require.NoError(t, err)
	assert.Equal(t, "Kill the Mancubi", got.Objectives[0].Description)
	assert.True(t, got.Objectives[0].Required)

	require.NoError(t, b.Close())

	_, err = os.Stat(cfg.DumpPath)
	require.NoError(t, err, "close writes a final dump")

	dump, err := database.GetSqliteDB(cfg.DumpPath)
	require.NoError(t, err)
	var count int64
	require.NoError(t, dump.Table("transitions").Count(&count).Error)
	assert.Equal(t, int64(1), count, "queued transitions are flushed before the dump")
}

func TestDumpLoop(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{
		Path:         filepath.Join(dir, "live.db"),
		DumpPath:     filepath.Join(dir, "periodic.db"),
		DumpInterval: 10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "periodic.db"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClose_WithoutDumpPath(t *testing.T) {
	b, err := New(Config{Path: filepath.Join(t.TempDir(), "live.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestInit_RestoresDumpAfterRestart(t *testing.T) {
	cfg := Config{DumpPath: filepath.Join(t.TempDir(), "objectives.db")}

	first, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, first.Init())
	require.NoError(t, first.Save(&core.Session{
		ID:      "s1",
		Map:     "E2M4",
		SavedAt: time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC),
		Objectives: []core.Objective{
			{Seq: 1, Description: "Find the red key", Category: core.CategoryCollect, Target: 1, MaxSkill: core.SkillHighest, Map: "E2M4", Required: true},
			{Seq: 2, Description: "Kill the Cyberdemon", Category: core.CategoryKill, Target: 1, MaxSkill: core.SkillHighest, Map: "E2M4"},
		},
	}))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "second close is a no-op")

	second, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, second.Init())
	defer second.Close()

	got, err := second.Load("E2M4")
	require.NoError(t, err)
	require.Len(t, got.Objectives, 2)
	assert.Equal(t, "Find the red key", got.Objectives[0].Description)
	assert.True(t, got.Objectives[0].Required)
	assert.Equal(t, "Kill the Cyberdemon", got.Objectives[1].Description)
}

func TestInit_RestoreKeepsExistingRows(t *testing.T) {
	cfg := Config{DumpPath: filepath.Join(t.TempDir(), "objectives.db")}

	b, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Save(&core.Session{ID: "s2", Map: "MAP01", SavedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, b.Dump())

	// the shared memory database is still open, so the dump rows collide
	again, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, again.Init())

	var count int64
	require.NoError(t, again.DB().Table("sessions").Where("map = ?", "MAP01").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, again.Close())
	require.NoError(t, b.Close())
}
