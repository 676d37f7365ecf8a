// Package config loads shopkeep settings from flags, SHOPKEEP_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/persistence/middleware"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SHOPKEEP_HTTP_ADDR.
const EnvPrefix = "SHOPKEEP"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the full set of runtime settings.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Lock    LockConfig    `mapstructure:"lock"`
	Intent  IntentConfig  `mapstructure:"intent"`
	History HistoryConfig `mapstructure:"history"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Render  RenderConfig  `mapstructure:"render"`
	Log     LogConfig     `mapstructure:"log"`
	Input   InputConfig   `mapstructure:"input"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// CatalogConfig selects the catalog source. File wins over Dir; with
// neither set the built-in catalog is used.
type CatalogConfig struct {
	File string `mapstructure:"file"`
	Dir  string `mapstructure:"dir"`
}

// StoreConfig selects the session store. EncryptKey (base64, 32 bytes)
// seals sessions at rest; FallbackKeys still decrypt sessions sealed
// before a rotation. Redact masks PII in transcripts before they are saved.
type StoreConfig struct {
	Driver       string   `mapstructure:"driver"`
	Dir          string   `mapstructure:"dir"`
	EncryptKey   string   `mapstructure:"encrypt_key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
	Redact       bool     `mapstructure:"redact"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LockConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// IntentConfig configures the external intent process. Config points to a
// YAML/JSON file and takes precedence over Command.
type IntentConfig struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
	Config  string        `mapstructure:"config"`
}

type HistoryConfig struct {
	Max int `mapstructure:"max"`
}

type EngineConfig struct {
	UpdatePolicy string `mapstructure:"update_policy"`
}

type RenderConfig struct {
	Density string `mapstructure:"density"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

var defaults = map[string]any{
	"http.addr":            ":8080",
	"catalog.file":         "",
	"catalog.dir":          "",
	"store.driver":         DriverMemory,
	"store.dir":            ".shopkeep/sessions",
	"store.encrypt_key":    "",
	"store.fallback_keys":  []string{},
	"store.redact":         false,
	"redis.addr":           "localhost:6379",
	"redis.password":       "",
	"redis.db":             0,
	"redis.prefix":         "shopkeep:session:",
	"redis.ttl":            24 * time.Hour,
	"lock.ttl":             30 * time.Second,
	"intent.command":       "",
	"intent.args":          []string{},
	"intent.timeout":       30 * time.Second,
	"intent.config":        "",
	"history.max":          50,
	"engine.update_policy": string(engine.UpdateLiteral),
	"render.density":       "",
	"log.level":            "info",
	"log.format":           string(logging.FormatText),
	"input.max_size":       4096,
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
// A missing file is an error only when path was given explicitly.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("shopkeep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	var cfg Config
	// Defaults always decode.
	_ = New().Unmarshal(&cfg)
	return cfg
}

// Validate rejects settings that cannot be wired.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q (want memory, file or redis)", c.Store.Driver)
	}
	for _, key := range append([]string{c.Store.EncryptKey}, c.Store.FallbackKeys...) {
		if key == "" {
			continue
		}
		if _, err := middleware.ParseKey(key); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	if len(c.Store.FallbackKeys) > 0 && c.Store.EncryptKey == "" {
		return errors.New("store.fallback_keys requires store.encrypt_key")
	}
	if _, err := engine.ParseUpdatePolicy(c.Engine.UpdatePolicy); err != nil {
		return err
	}
	if _, err := render.ParseDensity(c.Render.Density); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if c.Input.MaxSize <= 0 {
		return fmt.Errorf("input.max_size must be positive, got %d", c.Input.MaxSize)
	}
	return nil
}
