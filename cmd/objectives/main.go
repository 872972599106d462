package main

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C" // This is required to import the C code

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/OCAP2/objectives/internal/api"
	"github.com/OCAP2/objectives/internal/bridge"
	"github.com/OCAP2/objectives/internal/config"
	"github.com/OCAP2/objectives/internal/dispatcher"
	"github.com/OCAP2/objectives/internal/hooks"
	"github.com/OCAP2/objectives/internal/host"
	"github.com/OCAP2/objectives/internal/influx"
	"github.com/OCAP2/objectives/internal/logging"
	"github.com/OCAP2/objectives/internal/markers"
	"github.com/OCAP2/objectives/internal/mission"
	"github.com/OCAP2/objectives/internal/notify"
	"github.com/OCAP2/objectives/internal/objective"
	intOtel "github.com/OCAP2/objectives/internal/otel"
	"github.com/OCAP2/objectives/internal/parser"
	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/internal/util"
	"github.com/OCAP2/objectives/pkg/extension"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	ExtensionName string = "objectives"
)

// file paths
var (
	// AddonFolder holds the config file and default save locations. It is the
	// folder of the loaded library, or the working directory when that is unknown.
	AddonFolder string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	missionContext  *mission.Context
	objectiveStore  *objective.Store
	noticeCenter    *notify.Center
	markerSync      *markers.Synchronizer
	markerBuffer    *host.MarkerBuffer
	influxManager   *influx.Manager
	apiClient       *api.Client
	storageBackend  storage.Backend
	bridgeService   *bridge.Service
	hookManager     *hooks.Manager
	eventDispatcher *dispatcher.Dispatcher
)

// init is run automatically when the module is loaded
func init() {
	var err error

	AddonFolder = filepath.Dir(extension.ModulePath())
	if AddonFolder == "." {
		if wd, err := os.Getwd(); err == nil {
			AddonFolder = wd
		}
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(os.Stderr, "info", nil)
	Logger = SlogManager.Logger()

	if err = config.Load(AddonFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(AddonFolder, logsDir)
	}
	LogFile, LogFilePath, err = logging.OpenSessionLog(logsDir, ExtensionName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentExtensionVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      LogFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	missionContext = mission.NewContext()

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.WithContext(logging.MissionContext(missionContext))
	if viper.GetBool("graylog.enabled") {
		if err := SlogManager.EnableGraylog(viper.GetString("graylog.address")); err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		}
	}
	SlogManager.Setup(logOutput(), viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	if err = setupObjectives(); err != nil {
		Logger.Error("Failed to set up objectives!", "error", err)
		panic(err)
	}
	Logger.Info("Objectives ready", "version", CurrentExtensionVersion, "storage", config.GetStorageConfig().Type)
}

func logOutput() *os.File {
	if LogFile != nil {
		return LogFile
	}
	return os.Stderr
}

// setupObjectives builds the store and everything around it, then publishes
// the dispatcher to the host interface.
func setupObjectives() error {
	tickRate := config.GetInt("tickRate")
	fade := config.GetFloat("notify.fadeSeconds")

	objectiveStore = objective.New(missionContext, objective.Config{
		TickRate:    tickRate,
		FadeSeconds: fade,
		Debug:       config.GetBool("debug"),
	}, logging.Component(Logger, "objectives"))

	noticeCenter = notify.New(missionContext, notify.Config{
		TickRate:    tickRate,
		FadeSeconds: fade,
		Limit:       config.GetInt("notify.limit"),
	})

	var err error
	storageBackend, err = createStorageBackend(config.GetStorageConfig())
	if err != nil {
		Logger.Error("Failed to create storage backend, saving disabled", "error", err)
		storageBackend = nil
	} else if err = storageBackend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend, saving disabled", "error", err)
		storageBackend = nil
	}

	listeners := objective.Listeners{noticeCenter}
	if storageBackend != nil {
		if l := storage.NewTransitionListener(storageBackend, logging.Component(Logger, "storage")); l != nil {
			listeners = append(listeners, l)
		}
	}
	if l := setupInflux(); l != nil {
		listeners = append(listeners, l)
	}
	objectiveStore.SetListener(listeners)

	markerBuffer = host.NewMarkerBuffer()
	markerSync = markers.New(objectiveStore, markerBuffer, logging.Component(Logger, "markers"), markers.Options{
		Numbered:     config.GetBool("markers.numbered"),
		ShowTerminal: config.GetBool("markers.showTerminal"),
	})

	eventDispatcher, err = dispatcher.New(logging.Component(Logger, "dispatcher"))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	prs := parser.NewParser(Logger)
	hookManager = hooks.NewManager(hooks.Dependencies{
		Store:     objectiveStore,
		Markers:   markerSync,
		Buffer:    markerBuffer,
		Notices:   noticeCenter,
		Settings:  config.Settings{},
		Backend:   storageBackend,
		Parser:    prs,
		Logger:    logging.Component(Logger, "hooks"),
		Version:   CurrentExtensionVersion,
		BuildDate: BuildDate,
	}, hooks.Config{
		SyncInterval: uint64(config.GetInt("markers.syncInterval")),
		Exit:         config.GetExitConfig(),
	})
	hookManager.RegisterHandlers(eventDispatcher)

	bridgeService = bridge.NewService(bridge.Dependencies{
		Store:      objectiveStore,
		Parser:     prs,
		LogManager: SlogManager,
	})
	bridgeService.RegisterHandlers(eventDispatcher)

	registerLifecycleHandlers(eventDispatcher)
	Logger.Debug("Registered host commands", "commands", eventDispatcher.Commands())

	extension.SetVersion(CurrentExtensionVersion)
	extension.SetDispatcher(eventDispatcher)

	if url := viper.GetString("api.serverUrl"); url != "" {
		apiClient = api.New(url, viper.GetString("api.apiKey"))
		go checkServerStatus()
	}
	return nil
}

func checkServerStatus() {
	if err := apiClient.Healthcheck(); err != nil {
		Logger.Info("Companion server is offline", "error", err)
	} else {
		Logger.Info("Companion server is online")
	}
}

// uploadLastSave sends the most recent save file to the companion server.
// Only file-based backends keep one.
func uploadLastSave(tag string) error {
	if apiClient == nil {
		return fmt.Errorf("api.serverUrl not configured")
	}
	saver, ok := storageBackend.(interface{ LastSavePath() string })
	if !ok {
		return fmt.Errorf("storage backend %q does not keep save files", config.GetStorageConfig().Type)
	}
	path := saver.LastSavePath()
	if path == "" {
		return fmt.Errorf("nothing saved yet")
	}
	return apiClient.Upload(path, api.SaveMetadata{
		MapName:    missionContext.Map(),
		Objectives: objectiveStore.Len(),
		Tag:        tag,
	})
}

// setupInflux returns the transition listener writing to InfluxDB, or nil
// when influx is disabled.
func setupInflux() objective.Listener {
	if !viper.GetBool("influx.enabled") {
		return nil
	}
	zlog := zerolog.New(logOutput()).With().Timestamp().Str("component", "influx").Logger()
	backup := filepath.Join(AddonFolder, fmt.Sprintf("%s_%s.influx.gz", ExtensionName, SessionStartTime.Format("20060102_150405")))

	influxManager = influx.NewManager(zlog, backup)
	if err := influxManager.Connect(); err != nil {
		Logger.Error("Failed to connect to InfluxDB", "error", err)
		influxManager = nil
		return nil
	}
	return influx.NewListener(influxManager, logging.Component(Logger, "influx"))
}

func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return extension.ModulePath(), nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	d.Register(":SAVE:UPLOAD:", func(e dispatcher.Event) (any, error) {
		tag := ""
		if len(e.Args) > 0 {
			tag = util.CleanArg(e.Args[0])
		}
		go func() {
			if err := uploadLastSave(tag); err != nil {
				Logger.Error("Failed to upload save", "error", err)
				return
			}
			Logger.Info("Uploaded save", "map", missionContext.Map(), "tag", tag)
		}()
		return "ok", nil
	}, dispatcher.Logged())

	d.Register(":SHUTDOWN:", func(e dispatcher.Event) (any, error) {
		shutdown()
		return "ok", nil
	}, dispatcher.Logged())
}

// shutdown flushes and closes every sink. Errors are logged, never returned,
// so the host can always unload.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if markerSync != nil {
		markerSync.Clear()
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel provider", "error", err)
		}
	}
}
