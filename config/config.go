// Package config provides configuration types, defaults and loading for the
// campus events server.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. CAMPUS_SERVER_ADDR.
const EnvPrefix = "CAMPUS"

// Config holds all configuration options.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	DB        DBConfig        `mapstructure:"db" yaml:"db"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Seed      bool            `mapstructure:"seed" yaml:"seed"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// EnforceRoles turns on the X-Role check for admin and student routes.
	EnforceRoles bool `mapstructure:"enforce_roles" yaml:"enforce_roles"`
	// TrustForwardedFor keys rate limits on X-Forwarded-For. Only enable it
	// behind a proxy that sets the header itself.
	TrustForwardedFor bool `mapstructure:"trust_forwarded_for" yaml:"trust_forwarded_for"`
}

type DBConfig struct {
	Path        string        `mapstructure:"path" yaml:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

// StoreConfig picks the upsert strategy: ON CONFLICT when NativeUpsert is
// set, insert-then-update otherwise.
type StoreConfig struct {
	NativeUpsert bool `mapstructure:"native_upsert" yaml:"native_upsert"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

// RedisConfig enables the shared rate limiter. Empty URL keeps limits in
// process memory.
type RedisConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Defaults returns a Config with the values used when nothing is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			EnforceRoles:    true,
		},
		DB: DBConfig{
			Path:        filepath.Join("data", "campus_drive.db"),
			BusyTimeout: 5 * time.Second,
		},
		Store:     StoreConfig{NativeUpsert: true},
		RateLimit: RateLimitConfig{Requests: 60, Window: time.Minute},
		Metrics:   MetricsConfig{Enabled: true},
		Log:       LogConfig{Level: "info"},
		Seed:      true,
	}
}

// SetDefaults registers every default on v so env overrides resolve even
// for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.enforce_roles", d.Server.EnforceRoles)
	v.SetDefault("server.trust_forwarded_for", d.Server.TrustForwardedFor)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.busy_timeout", d.DB.BusyTimeout)
	v.SetDefault("store.native_upsert", d.Store.NativeUpsert)
	v.SetDefault("ratelimit.requests", d.RateLimit.Requests)
	v.SetDefault("ratelimit.window", d.RateLimit.Window)
	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("seed", d.Seed)
}

// Load reads the config file at path (optional when empty), applies
// CAMPUS_* environment overrides and validates the result.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("ratelimit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit.window must be positive"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug/info/warn/error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: unknown level %q", s)
	}
	return level, nil
}

// WriteDefault writes the default config as YAML, creating the parent
// directory. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	header := []byte("# campus-events configuration. Every key can be overridden with CAMPUS_<SECTION>_<KEY>.\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
