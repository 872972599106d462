package main

import (
	"fmt"
	"path/filepath"

	"github.com/OCAP2/objectives/internal/config"
	"github.com/OCAP2/objectives/internal/database"
	"github.com/OCAP2/objectives/internal/storage"
	gormstorage "github.com/OCAP2/objectives/internal/storage/gorm"
	"github.com/OCAP2/objectives/internal/storage/memory"
	pgstorage "github.com/OCAP2/objectives/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/objectives/internal/storage/sqlite"
	wsstorage "github.com/OCAP2/objectives/internal/storage/websocket"

	"github.com/rs/zerolog"
)

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		Logger.Info("Postgres storage backend initialized")
		return pgstorage.New(pgstorage.Dependencies{
			LogManager: SlogManager,
		}), nil

	case "sqlite":
		dumpPath := storageCfg.SQLite.DumpPath
		if dumpPath != "" && !filepath.IsAbs(dumpPath) {
			dumpPath = filepath.Join(AddonFolder, dumpPath)
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, SlogManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized")
		return backend, nil

	// database tries Postgres and falls back to a local SQLite file.
	case "database":
		mgr := database.NewManager(zerolog.New(logOutput()).With().Timestamp().Str("component", "database").Logger())
		mgr.SqliteFilePath = filepath.Join(AddonFolder, fmt.Sprintf("%s_%s.db", ExtensionName, SessionStartTime.Format("20060102_150405")))
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		Logger.Info("Database storage backend initialized", "local", mgr.ShouldSaveLocal)
		return gormstorage.New(gormstorage.Dependencies{
			DB:         mgr.DB,
			LogManager: SlogManager,
		}), nil

	case "websocket":
		wsURL := wsstorage.ToWebSocketURL(storageCfg.WebSocket.URL)
		Logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: storageCfg.WebSocket.Secret,
		}, Logger), nil

	default:
		outputDir := storageCfg.Memory.OutputDir
		if !filepath.IsAbs(outputDir) {
			storageCfg.Memory.OutputDir = filepath.Join(AddonFolder, outputDir)
		}
		Logger.Info("Memory storage backend initialized", "dir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil
	}
}
