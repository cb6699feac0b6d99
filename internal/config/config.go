package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "markerd.cfg.json"

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr            string `json:"addr" mapstructure:"addr"`
	AllowAllOrigins bool   `json:"allowAllOrigins" mapstructure:"allowAllOrigins"`
	StaticDir       string `json:"staticDir" mapstructure:"staticDir"`
}

// PageConfig holds what the rendered map page exposes to the overlay
type PageConfig struct {
	MapDivID   string
	MapVarName string
	CenterLat  float64
	CenterLon  float64
	Zoom       int
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the annotation store
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// BridgeConfig holds LED bridge settings
type BridgeConfig struct {
	Enabled   bool
	Device    string
	ServerURL string
	Interval  time.Duration
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.addr", ":5000")
	viper.SetDefault("server.allowAllOrigins", false)
	viper.SetDefault("server.staticDir", "./static")

	viper.SetDefault("page.mapDivId", "map")
	viper.SetDefault("page.mapVarName", "leafletMap")
	viper.SetDefault("page.center.lat", 20.0)
	viper.SetDefault("page.center.lon", 0.0)
	viper.SetDefault("page.zoom", 3)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.path", "server_storage.json")
	viper.SetDefault("storage.sqlite.path", "markers.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "markers")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "markers")
	viper.SetDefault("influx.bucket", "visibility")
	viper.SetDefault("influx.backupPath", "./influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org")

	viper.SetDefault("bridge.enabled", false)
	viper.SetDefault("bridge.device", "/dev/ttyACM0")
	viper.SetDefault("bridge.serverUrl", "http://localhost:5000")
	viper.SetDefault("bridge.interval", "300ms")

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

// GetServerConfig returns the HTTP listener settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            viper.GetString("server.addr"),
		AllowAllOrigins: viper.GetBool("server.allowAllOrigins"),
		StaticDir:       viper.GetString("server.staticDir"),
	}
}

// GetPageConfig returns the map page settings.
func GetPageConfig() PageConfig {
	return PageConfig{
		MapDivID:   viper.GetString("page.mapDivId"),
		MapVarName: viper.GetString("page.mapVarName"),
		CenterLat:  viper.GetFloat64("page.center.lat"),
		CenterLon:  viper.GetFloat64("page.center.lon"),
		Zoom:       viper.GetInt("page.zoom"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			Path: viper.GetString("storage.memory.path"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetBridgeConfig returns the LED bridge settings.
func GetBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Enabled:   viper.GetBool("bridge.enabled"),
		Device:    viper.GetString("bridge.device"),
		ServerURL: viper.GetString("bridge.serverUrl"),
		Interval:  viper.GetDuration("bridge.interval"),
	}
}
