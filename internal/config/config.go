// Package config loads the layoutkit settings shared by every command.
//
// Values are layered: built-in defaults, then an optional YAML or JSON file,
// then LAYOUTKIT_* environment variables. Command-line flags are applied on
// top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverRemote = "remote"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAYOUTKIT_"

// DefaultFiles are probed in the working directory when no file is given.
var DefaultFiles = []string{"layoutkit.yaml", "layoutkit.yml", "layoutkit.json"}

// Config holds the full set of settings.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" json:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog" json:"catalog"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
	Lock    LockConfig    `mapstructure:"lock" json:"lock"`
}

type StorageConfig struct {
	Driver    string      `mapstructure:"driver" json:"driver"`
	Path      string      `mapstructure:"path" json:"path"`
	Redis     RedisConfig `mapstructure:"redis" json:"redis"`
	RemoteURL string      `mapstructure:"remote_url" json:"remote_url"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" json:"addr"`
	Password string        `mapstructure:"password" json:"-"`
	DB       int           `mapstructure:"db" json:"db"`
	Prefix   string        `mapstructure:"prefix" json:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" json:"ttl"`
}

// CatalogConfig points at the field catalog. An empty path selects the embedded default.
type CatalogConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

type ServerConfig struct {
	Port    int  `mapstructure:"port" json:"port"`
	Metrics bool `mapstructure:"metrics" json:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"` // text | json
}

// LockConfig enables per-layout locking around repository writes.
type LockConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" json:"ttl"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   filepath.Join("storage", "layouts"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "layoutkit:layout:",
			},
		},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "text"},
		Lock:   LockConfig{Enabled: true, TTL: 30 * time.Second},
	}
}

// envKeys maps each supported variable (without prefix) to its config path.
var envKeys = map[string]string{
	"STORAGE_DRIVER":     "storage.driver",
	"STORAGE_PATH":       "storage.path",
	"STORAGE_REMOTE_URL": "storage.remote_url",
	"REDIS_ADDR":         "storage.redis.addr",
	"REDIS_PASSWORD":     "storage.redis.password",
	"REDIS_DB":           "storage.redis.db",
	"REDIS_PREFIX":       "storage.redis.prefix",
	"REDIS_TTL":          "storage.redis.ttl",
	"CATALOG_PATH":       "catalog.path",
	"SERVER_PORT":        "server.port",
	"SERVER_METRICS":     "server.metrics",
	"LOG_LEVEL":          "log.level",
	"LOG_FORMAT":         "log.format",
	"LOCK_ENABLED":       "lock.enabled",
	"LOCK_TTL":           "lock.ttl",
}

// Load reads settings from path (or the first of DefaultFiles that exists
// when path is empty) and the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findDefaultFile()
	}
	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := decode(raw, cfg, true); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	if env := envOverrides(lookup); len(env) > 0 {
		if err := decode(env, cfg, false); err != nil {
			return nil, fmt.Errorf("invalid %s environment: %w", EnvPrefix+"*", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have a fixed set of values.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverFile, DriverMemory:
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis driver"))
		}
	case DriverRemote:
		if c.Storage.RemoteURL == "" {
			errs = append(errs, errors.New("storage.remote_url is required for the remote driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func findDefaultFile() string {
	for _, name := range DefaultFiles {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return raw, nil
}

func envOverrides(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}
	for name, path := range envKeys {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		setPath(out, strings.Split(path, "."), v)
	}
	return out
}

func setPath(m map[string]any, keys []string, v any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = v
}

func decode(raw map[string]any, cfg *Config, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
