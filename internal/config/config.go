package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SchedulingService/pkg/retry"
)

// EnvConfigPath переменная окружения с путем к конфигу
const EnvConfigPath = "CONFIG_PATH"

// DefaultPath путь к конфигу, если CONFIG_PATH не задан
const DefaultPath = "config.toml"

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Cache       CacheConfig       `toml:"cache"`
	Redis       RedisConfig       `toml:"redis"`
	Events      EventsConfig      `toml:"events"`
	Booking     BookingConfig     `toml:"booking"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"` // postgres (lib/pq) или pgx
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения в URL-формате, понятном и lib/pq, и pgx
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type LogsConfig struct {
	File  string `toml:"file"` // пусто = stdout
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type CacheConfig struct {
	Driver     string `toml:"driver"` // memory или redis
	TTLSeconds int    `toml:"ttl_seconds"`
}

// TTL время жизни закешированного списка слотов
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

type EventsConfig struct {
	Driver       string `toml:"driver"` // none, nats или kafka
	NATSURL      string `toml:"nats_url"`
	KafkaBrokers string `toml:"kafka_brokers"` // через запятую
	TopicPrefix  string `toml:"topic_prefix"`
}

type BookingConfig struct {
	DefaultCountryCode  string `toml:"default_country_code"`
	DefaultTimezone     string `toml:"default_timezone"`
	RetryAttempts       uint   `toml:"retry_attempts"`
	RetryInitialBackoff int    `toml:"retry_initial_backoff_ms"`
	RetryMaxBackoff     int    `toml:"retry_max_backoff_ms"`
}

// RetryPolicy политика повтора записи при конфликтах сериализации
func (c *BookingConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     c.RetryAttempts,
		InitialInterval: time.Duration(c.RetryInitialBackoff) * time.Millisecond,
		MaxInterval:     time.Duration(c.RetryMaxBackoff) * time.Millisecond,
	}
}

type MaintenanceConfig struct {
	ExpireEnabled         bool `toml:"expire_enabled"`
	ExpireIntervalSeconds int  `toml:"expire_interval_seconds"`
	PendingTTLMinutes     int  `toml:"pending_ttl_minutes"`
}

func (c *MaintenanceConfig) ExpireInterval() time.Duration {
	return time.Duration(c.ExpireIntervalSeconds) * time.Second
}

func (c *MaintenanceConfig) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLMinutes) * time.Minute
}

// Default значения, поверх которых читается файл
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "scheduling",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "scheduling-service",
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTLSeconds: 60,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "slots",
		},
		Events: EventsConfig{
			Driver:      "none",
			TopicPrefix: "scheduling",
		},
		Booking: BookingConfig{
			DefaultCountryCode:  "55",
			DefaultTimezone:     "America/Sao_Paulo",
			RetryAttempts:       3,
			RetryInitialBackoff: 50,
			RetryMaxBackoff:     1000,
		},
		Maintenance: MaintenanceConfig{
			ExpireEnabled:         true,
			ExpireIntervalSeconds: 60,
			PendingTTLMinutes:     15,
		},
	}
}

// Load читает TOML-файл поверх значений по умолчанию и валидирует результат
func Load(path string) (*Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path путь к конфигу из CONFIG_PATH или DefaultPath
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Validate проверяет значения, без которых сервис не стартует
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid config: server.http_port must be in 1-65535, got %d", c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("invalid config: database.driver must be postgres or pgx, got %q", c.Database.Driver)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("invalid config: database.host and database.dbname are required")
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid config: cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("invalid config: cache.ttl_seconds must be positive")
	}
	if c.Cache.Driver == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required for redis cache")
	}

	switch c.Events.Driver {
	case "none":
	case "nats":
		if c.Events.NATSURL == "" {
			return fmt.Errorf("invalid config: events.nats_url is required for nats")
		}
	case "kafka":
		if c.Events.KafkaBrokers == "" {
			return fmt.Errorf("invalid config: events.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("invalid config: events.driver must be none, nats or kafka, got %q", c.Events.Driver)
	}

	if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid config: booking.default_timezone: %w", err)
	}
	if c.Booking.DefaultCountryCode == "" {
		return fmt.Errorf("invalid config: booking.default_country_code is required")
	}
	if c.Booking.RetryAttempts == 0 {
		return fmt.Errorf("invalid config: booking.retry_attempts must be at least 1")
	}

	if c.Maintenance.ExpireEnabled {
		if c.Maintenance.ExpireIntervalSeconds <= 0 || c.Maintenance.PendingTTLMinutes <= 0 {
			return fmt.Errorf("invalid config: maintenance interval and pending ttl must be positive")
		}
	}

	return nil
}
