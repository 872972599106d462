package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/objectives/internal/host"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"tickRate": 70,
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 70, GetInt("tickRate"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./objectiveslogs", viper.GetString("logsDir"))
	assert.Equal(t, false, viper.GetBool("debug"))
	assert.Equal(t, 35, viper.GetInt("tickRate"))
	assert.Equal(t, 35, viper.GetInt("markers.syncInterval"))
	assert.Equal(t, true, viper.GetBool("markers.numbered"))
	assert.Equal(t, false, viper.GetBool("markers.showTerminal"))
	assert.Equal(t, 3.0, viper.GetFloat64("notify.fadeSeconds"))
	assert.Equal(t, 180.0, viper.GetFloat64("compass.fov"))
	assert.Equal(t, 90.0, viper.GetFloat64("indicator.fov"))
	assert.Equal(t, 32.0, viper.GetFloat64("indicator.edgeMargin"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "objectives", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "", viper.GetString("websocket.url"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)
	viper.Set("testFloat", 1.5)
	viper.Set("testDuration", "250ms")
	viper.Set("testInts", []int{1, 2})

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
	assert.Equal(t, 1.5, GetFloat("testFloat"))
	assert.Equal(t, 250*time.Millisecond, GetDuration("testDuration"))
	assert.Equal(t, []int{1, 2}, GetIntSlice("testInts"))
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./saves", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "./saves/objectives.db", cfg.SQLite.DumpPath)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "websocket",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m" }
		},
		"websocket": { "url": "http://map.local/ws", "secret": "s3" }
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "websocket", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "http://map.local/ws", sc.WebSocket.URL)
	assert.Equal(t, "s3", sc.WebSocket.Secret)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "objectives", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetExitConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	ec := GetExitConfig()
	assert.Equal(t, ExitAdvisory, ec.Mode)
	assert.Equal(t, []int{243, 244}, ec.Specials)

	viper.Set("exit.mode", "authoritative")
	assert.Equal(t, ExitAuthoritative, GetExitConfig().Mode)

	viper.Set("exit.mode", "bogus")
	assert.Equal(t, ExitAdvisory, GetExitConfig().Mode)
}

func TestSettings_PlayerOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"compass": { "fov": 120 },
		"players": { "2": { "compass": { "fov": 60, "enabled": false } } }
	}`)))

	var s host.Settings = Settings{}
	assert.Equal(t, 120.0, s.Float(0, "compass.fov", 1))
	assert.Equal(t, 60.0, s.Float(2, "compass.fov", 1))
	assert.False(t, s.Bool(2, "compass.enabled", true))
	assert.True(t, s.Bool(0, "compass.enabled", false), "global default applies")
	assert.Equal(t, 7, s.Int(0, "not.a.key", 7))
	assert.Equal(t, "x", s.String(3, "not.a.key", "x"))
	assert.Equal(t, "advisory", s.String(3, "exit.mode", "x"))
}
