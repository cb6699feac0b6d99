package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

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
		"server": { "addr": ":8080" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, ":8080", viper.GetString("server.addr"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, ":5000", viper.GetString("server.addr"))
	assert.Equal(t, false, viper.GetBool("server.allowAllOrigins"))
	assert.Equal(t, "map", viper.GetString("page.mapDivId"))
	assert.Equal(t, "leafletMap", viper.GetString("page.mapVarName"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "markers", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "visibility", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "https://nominatim.openstreetmap.org", viper.GetString("geocoder.url"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults remain usable
	assert.Equal(t, ":5000", GetServerConfig().Addr)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetPageConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"page": {"mapDivId": "world", "center": {"lat": 51.5}}}`)))

	pc := GetPageConfig()
	assert.Equal(t, "world", pc.MapDivID)
	assert.Equal(t, "leafletMap", pc.MapVarName)
	assert.Equal(t, 51.5, pc.CenterLat)
	assert.Equal(t, 0.0, pc.CenterLon)
	assert.Equal(t, 3, pc.Zoom)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "server_storage.json", cfg.Memory.Path)
	assert.Equal(t, "markers.db", cfg.SQLite.Path)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "path": "/tmp/markers.json" },
			"sqlite": { "path": "/var/lib/markers.db" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/markers.json", sc.Memory.Path)
	assert.Equal(t, "/var/lib/markers.db", sc.SQLite.Path)
}

func TestGetBridgeConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))
	bc := GetBridgeConfig()
	assert.Equal(t, false, bc.Enabled)
	assert.Equal(t, "http://localhost:5000", bc.ServerURL)
	assert.Equal(t, 300*time.Millisecond, bc.Interval)

	viper.Reset()
	require.NoError(t, Load(writeConfig(t, `{"bridge": {"enabled": true, "device": "COM7", "interval": "1s"}}`)))
	bc = GetBridgeConfig()
	assert.Equal(t, true, bc.Enabled)
	assert.Equal(t, "COM7", bc.Device)
	assert.Equal(t, time.Second, bc.Interval)
}
