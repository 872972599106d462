package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file read from the config directory.
const FileName = "objectives.cfg.json"

// MemoryConfig holds gzip JSON save backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds in-memory SQLite backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// WebSocketConfig holds companion server streaming settings
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the save-state backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// ExitConfig controls how level-exit lines are gated on required objectives.
type ExitConfig struct {
	Mode     string
	Specials []int
}

// Exit modes.
const (
	ExitAdvisory      = "advisory"
	ExitAuthoritative = "authoritative"
)

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./objectiveslogs")
	viper.SetDefault("debug", false)

	viper.SetDefault("tickRate", 35)
	viper.SetDefault("markers.syncInterval", 35)
	viper.SetDefault("markers.showTerminal", false)
	viper.SetDefault("markers.numbered", true)
	viper.SetDefault("notify.fadeSeconds", 3.0)
	viper.SetDefault("notify.limit", 6)

	viper.SetDefault("exit.mode", ExitAdvisory)
	viper.SetDefault("exit.specials", []int{243, 244})

	viper.SetDefault("compass.enabled", true)
	viper.SetDefault("compass.fov", 180.0)
	viper.SetDefault("compass.width", 512.0)
	viper.SetDefault("compass.inset", 8.0)
	viper.SetDefault("compass.height", 12.0)
	viper.SetDefault("compass.outOfViewAlpha", 0.5)
	viper.SetDefault("indicator.enabled", true)
	viper.SetDefault("indicator.fov", 90.0)
	viper.SetDefault("indicator.edgeMargin", 32.0)

	viper.SetDefault("falloff.alphaStart", 512.0)
	viper.SetDefault("falloff.alphaRange", 2048.0)
	viper.SetDefault("falloff.alphaFloor", 0.35)
	viper.SetDefault("falloff.scaleStart", 256.0)
	viper.SetDefault("falloff.scaleRange", 1536.0)
	viper.SetDefault("falloff.scaleFloor", 0.5)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./saves")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./saves/objectives.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "objectives")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "objectives")
	viper.SetDefault("influx.bucket", "objectives")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "objectives")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("api.serverUrl", "")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("websocket.url", "")
	viper.SetDefault("websocket.secret", "")

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetIntSlice returns an int slice config value.
func GetIntSlice(key string) []int {
	return viper.GetIntSlice(key)
}

// GetStorageConfig returns the save backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("websocket.url"),
			Secret: viper.GetString("websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetExitConfig returns the exit gating configuration. Unknown modes fall
// back to advisory.
func GetExitConfig() ExitConfig {
	mode := viper.GetString("exit.mode")
	if mode != ExitAuthoritative {
		mode = ExitAdvisory
	}
	return ExitConfig{
		Mode:     mode,
		Specials: viper.GetIntSlice("exit.specials"),
	}
}
