package database

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/objectives/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.local")
	viper.Set("db.port", "6543")
	viper.Set("db.username", "u")
	viper.Set("db.password", "p")
	viper.Set("db.database", "objectives")

	assert.Equal(t, "host=db.local port=6543 user=u password=p dbname=objectives sslmode=disable", PostgresDSN())
}

func TestGetSqliteDB_MigrateAndDump(t *testing.T) {
	dir := t.TempDir()
	db, err := GetSqliteDB(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&model.Transition{Map: "MAP01", Description: "Kill imps", State: "completed"}).Error)

	dump := filepath.Join(dir, "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, dump))
	_, err = os.Stat(dump)
	require.NoError(t, err)

	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, dump))

	restored, err := GetSqliteDB(dump)
	require.NoError(t, err)
	var count int64
	require.NoError(t, restored.Model(&model.Transition{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestRestoreDiskToMemory(t *testing.T) {
	dir := t.TempDir()
	src, err := GetSqliteDB(filepath.Join(dir, "old.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(src))
	require.NoError(t, src.Create(&model.Transition{Map: "MAP03", Description: "Open the gate", State: "completed"}).Error)
	dump := filepath.Join(dir, "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(src, dump))

	dst, err := GetSqliteDB(filepath.Join(dir, "new.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(dst))
	require.NoError(t, RestoreDiskToMemory(dst, dump))
	require.NoError(t, RestoreDiskToMemory(dst, dump), "rows already present are kept")

	var rows []model.Transition
	require.NoError(t, dst.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Open the gate", rows[0].Description)
	assert.Equal(t, "MAP03", rows[0].Map)
}

func TestRestoreDiskToMemory_MissingDump(t *testing.T) {
	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, RestoreDiskToMemory(db, filepath.Join(t.TempDir(), "missing.db")))
}

func TestManager_FallsBackToSqlite(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "127.0.0.1")
	viper.Set("db.port", "1")

	var logs bytes.Buffer
	m := NewManager(zerolog.New(&logs))
	m.SqliteFilePath = filepath.Join(t.TempDir(), "fallback.db")

	require.NoError(t, m.Connect())
	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Contains(t, logs.String(), "trying SQLite")

	require.NoError(t, m.Setup())
	assert.True(t, m.DB.Migrator().HasTable(&model.Session{}))
}
