package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Dev          bool               `mapstructure:"dev"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	NATS         NATSConfig         `mapstructure:"nats"`
	Valkey       ValkeyConfig       `mapstructure:"valkey"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Temporal     TemporalConfig     `mapstructure:"temporal"`
	Log          LogConfig          `mapstructure:"log"`
	Jurisdiction JurisdictionConfig `mapstructure:"jurisdiction"`
	Map          MapConfig          `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
	// FixSubject prefixes per-device position subjects: <prefix>.<device>.
	FixSubject string `mapstructure:"fix_subject"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	MarkerTTL int    `mapstructure:"marker_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	// EscalateAfter is how long a report may stay Pending before escalation.
	EscalateAfter time.Duration `mapstructure:"escalate_after"`
	Enabled       bool          `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type JurisdictionConfig struct {
	// Path to a YAML jurisdiction file. Empty selects the built-in one.
	Path string `mapstructure:"path"`
}

type MapConfig struct {
	BoundsBuffer        float64       `mapstructure:"bounds_buffer"`
	MinZoom             int           `mapstructure:"min_zoom"`
	MaxZoom             int           `mapstructure:"max_zoom"`
	DefaultZoom         int           `mapstructure:"default_zoom"`
	TrackZoom           int           `mapstructure:"track_zoom"`
	OutOfBoundsDuration time.Duration `mapstructure:"out_of_bounds_duration"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: BARANGAYMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("BARANGAYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("dev", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "barangay")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "barangaymap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.fix_subject", "barangay.fix")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.marker_ttl", 30)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "report-triage")
	v.SetDefault("temporal.escalate_after", "24h")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jurisdiction.path", "")
	v.SetDefault("map.bounds_buffer", 0.01)
	v.SetDefault("map.min_zoom", 14)
	v.SetDefault("map.max_zoom", 18)
	v.SetDefault("map.default_zoom", 16)
	v.SetDefault("map.track_zoom", 17)
	v.SetDefault("map.out_of_bounds_duration", "3s")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if !c.Dev {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
		if c.NATS.URL == "" {
			errs = append(errs, "nats.url is required")
		}
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required")
		}
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}
	errs = append(errs, c.Map.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (m MapConfig) validate() []string {
	var errs []string
	if m.BoundsBuffer < 0 {
		errs = append(errs, fmt.Sprintf("map.bounds_buffer must not be negative, got %g", m.BoundsBuffer))
	}
	if m.MinZoom < 0 || m.MinZoom > m.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.min_zoom/max_zoom must satisfy 0 <= min <= max, got %d/%d", m.MinZoom, m.MaxZoom))
	}
	if m.DefaultZoom < m.MinZoom || m.DefaultZoom > m.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.default_zoom %d outside %d-%d", m.DefaultZoom, m.MinZoom, m.MaxZoom))
	}
	if m.TrackZoom < m.MinZoom || m.TrackZoom > m.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.track_zoom %d outside %d-%d", m.TrackZoom, m.MinZoom, m.MaxZoom))
	}
	if m.OutOfBoundsDuration <= 0 {
		errs = append(errs, "map.out_of_bounds_duration must be positive")
	}
	return errs
}
