// Package config loads the rigview JSON configuration file through viper and
// exposes typed sub-configs for the packages that consume them.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// SmoothingConfig holds the motion smoothing settings.
type SmoothingConfig struct {
	Enabled        bool    `json:"enabled" mapstructure:"enabled"`
	DurationMs     int     `json:"durationMs" mapstructure:"durationMs"`
	AngularSnapDeg float64 `json:"angularSnapDeg" mapstructure:"angularSnapDeg"`
	LinearSnapM    float64 `json:"linearSnapM" mapstructure:"linearSnapM"`
	Easing         string  `json:"easing" mapstructure:"easing"`
}

// LivenessConfig holds the sub-domain expiry settings.
type LivenessConfig struct {
	ExpiryMs int `json:"expiryMs" mapstructure:"expiryMs"`
}

// OscillatorConfig holds the fallback oscillator settings.
type OscillatorConfig struct {
	AmplitudeDeg float64 `json:"amplitudeDeg" mapstructure:"amplitudeDeg"`
	FrequencyHz  float64 `json:"frequencyHz" mapstructure:"frequencyHz"`
}

// FeedConfig holds the UDP batch feed settings.
type FeedConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	ListenAddr string `json:"listenAddr" mapstructure:"listenAddr"`
}

// InfluxConfig holds the telemetry sink settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// DBConfig holds the Postgres recorder settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig holds the session recorder settings.
type StorageConfig struct {
	Backend    string   `json:"backend" mapstructure:"backend"` // memory, sqlite, postgres
	SqlitePath string   `json:"sqlitePath" mapstructure:"sqlitePath"`
	DB         DBConfig `json:"db" mapstructure:"db"`
}

// ApiConfig holds the front-end server settings.
type ApiConfig struct {
	ServerUrl string `json:"serverUrl" mapstructure:"serverUrl"`
	ApiKey    string `json:"apiKey" mapstructure:"apiKey"`
}

// GraylogConfig holds the GELF log shipping settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// OtelConfig holds the OpenTelemetry export settings.
type OtelConfig struct {
	Enabled      bool   `json:"enabled" mapstructure:"enabled"`
	OtlpEndpoint string `json:"otlpEndpoint" mapstructure:"otlpEndpoint"`
}

// Load reads configuration from rigview.cfg.json in configDir and sets
// default values. A missing file is not an error; defaults apply.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./rigviewlogs")

	viper.SetDefault("smoothing.enabled", true)
	viper.SetDefault("smoothing.durationMs", 250)
	viper.SetDefault("smoothing.angularSnapDeg", 65.0)
	viper.SetDefault("smoothing.linearSnapM", 0.05)
	viper.SetDefault("smoothing.easing", "ease-out-cubic")

	viper.SetDefault("liveness.expiryMs", 800)

	viper.SetDefault("oscillator.amplitudeDeg", 8.0)
	viper.SetDefault("oscillator.frequencyHz", 0.5)

	viper.SetDefault("scheduler.tickMs", 16)

	viper.SetDefault("feed.enabled", true)
	viper.SetDefault("feed.listenAddr", ":7621")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "rigview-metrics")
	viper.SetDefault("influx.bucket", "rigview")

	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.sqlitePath", "./rigview.db")
	viper.SetDefault("storage.db.host", "localhost")
	viper.SetDefault("storage.db.port", "5432")
	viper.SetDefault("storage.db.username", "postgres")
	viper.SetDefault("storage.db.password", "postgres")
	viper.SetDefault("storage.db.database", "rigview")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.otlpEndpoint", "")

	viper.SetConfigName("rigview.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Smoothing returns the motion smoothing settings.
func Smoothing() SmoothingConfig {
	var c SmoothingConfig
	_ = viper.UnmarshalKey("smoothing", &c)
	return c
}

// Liveness returns the sub-domain expiry settings.
func Liveness() LivenessConfig {
	var c LivenessConfig
	_ = viper.UnmarshalKey("liveness", &c)
	return c
}

// Oscillator returns the fallback oscillator settings.
func Oscillator() OscillatorConfig {
	var c OscillatorConfig
	_ = viper.UnmarshalKey("oscillator", &c)
	return c
}

// Feed returns the UDP feed settings.
func Feed() FeedConfig {
	var c FeedConfig
	_ = viper.UnmarshalKey("feed", &c)
	return c
}

// Influx returns the telemetry sink settings.
func Influx() InfluxConfig {
	var c InfluxConfig
	_ = viper.UnmarshalKey("influx", &c)
	return c
}

// Storage returns the session recorder settings.
func Storage() StorageConfig {
	var c StorageConfig
	_ = viper.UnmarshalKey("storage", &c)
	return c
}

// Api returns the front-end server settings.
func Api() ApiConfig {
	var c ApiConfig
	_ = viper.UnmarshalKey("api", &c)
	return c
}

// Graylog returns the GELF shipping settings.
func Graylog() GraylogConfig {
	var c GraylogConfig
	_ = viper.UnmarshalKey("graylog", &c)
	return c
}

// Otel returns the OpenTelemetry export settings.
func Otel() OtelConfig {
	var c OtelConfig
	_ = viper.UnmarshalKey("otel", &c)
	return c
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
