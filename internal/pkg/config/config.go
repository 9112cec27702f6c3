package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends for saved routes.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   string          `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// PlanTimeout bounds the option generation endpoints, in seconds.
	PlanTimeout int `mapstructure:"plan_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Enabled   bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// RoutingConfig tunes the street-routing client and the loop search.
type RoutingConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	MaxAttempts     int     `mapstructure:"max_attempts"`
	WindingFactor   float64 `mapstructure:"winding_factor"`
	JitterMin       float64 `mapstructure:"jitter_min"`
	JitterMax       float64 `mapstructure:"jitter_max"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds"`
}

type WeatherConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type GeocodingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// WorkerConfig configures cmd/worker.
type WorkerConfig struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	Durable     string `mapstructure:"durable"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.plan_timeout", 45)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "laufrunde")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "laufrunde")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "laufrunde:")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.timeout_seconds", 10)
	v.SetDefault("routing.max_attempts", 3)
	v.SetDefault("routing.winding_factor", 1.3)
	v.SetDefault("routing.jitter_min", 0.90)
	v.SetDefault("routing.jitter_max", 1.10)
	v.SetDefault("routing.cache_ttl_seconds", 3600)
	v.SetDefault("weather.base_url", "https://api.open-meteo.com")
	v.SetDefault("weather.cache_ttl_seconds", 600)
	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "laufrunde/1.0")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "laufrunde-bookmarks")
	v.SetDefault("worker.metrics_port", 9091)
	v.SetDefault("worker.durable", "laufrunde-analytics")
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	SetDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: LAUFRUNDE_ROUTING_BASE_URL → routing.base_url
	v.SetEnvPrefix("LAUFRUNDE")
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
	if c.Server.PlanTimeout <= 0 {
		errs = append(errs, "server.plan_timeout must be positive")
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
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
	default:
		errs = append(errs, fmt.Sprintf("storage must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Worker.MetricsPort <= 0 || c.Worker.MetricsPort > 65535 {
		errs = append(errs, fmt.Sprintf("worker.metrics_port must be 1-65535, got %d", c.Worker.MetricsPort))
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if c.Routing.BaseURL == "" {
		errs = append(errs, "routing.base_url is required")
	}
	if c.Routing.TimeoutSeconds <= 0 {
		errs = append(errs, "routing.timeout_seconds must be positive")
	}
	if c.Routing.MaxAttempts <= 0 {
		errs = append(errs, fmt.Sprintf("routing.max_attempts must be positive, got %d", c.Routing.MaxAttempts))
	}
	if c.Routing.WindingFactor <= 0 {
		errs = append(errs, "routing.winding_factor must be positive")
	}
	if c.Routing.JitterMin <= 0 || c.Routing.JitterMax < c.Routing.JitterMin {
		errs = append(errs, fmt.Sprintf("routing jitter band [%v, %v] is invalid", c.Routing.JitterMin, c.Routing.JitterMax))
	}

	if c.Geocoding.UserAgent == "" {
		errs = append(errs, "geocoding.user_agent is required")
	}
	if c.Temporal.Enabled {
		if c.Temporal.HostPort == "" {
			errs = append(errs, "temporal.host_port is required when temporal is enabled")
		}
		if c.Temporal.TaskQueue == "" {
			errs = append(errs, "temporal.task_queue is required when temporal is enabled")
		}
		if c.Storage == StorageMemory {
			errs = append(errs, "temporal requires postgres storage; the worker cannot see an in-process store")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
