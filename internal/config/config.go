// Package config loads NovaPay settings from defaults, an optional YAML
// file, NOVAPAY_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. NOVAPAY_HTTP_ADDR.
const EnvPrefix = "NOVAPAY"

// Config is the complete NovaPay configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Store    StoreConfig    `mapstructure:"store"`
	Session  SessionConfig  `mapstructure:"session"`
	Simulate SimulateConfig `mapstructure:"simulate"`
	Mock     MockConfig     `mapstructure:"mock"`
	Input    InputConfig    `mapstructure:"input"`

	// Catalog is an optional YAML file overriding step labels.
	Catalog string `mapstructure:"catalog"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig selects where sessions live between requests.
type StoreConfig struct {
	// Driver is memory, redis or file.
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
	File   FileConfig  `mapstructure:"file"`

	// EncryptionKey is a base64 AES key. Empty stores payloads in clear.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// Persistent reports whether sessions outlive the process.
func (s StoreConfig) Persistent() bool {
	return s.Driver != "" && s.Driver != "memory"
}

type RedisConfig struct {
	Addr   string        `mapstructure:"addr"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type SessionConfig struct {
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	ActionTimeout time.Duration `mapstructure:"action_timeout"`
}

// SimulateConfig shapes the mock backend the flows talk to.
type SimulateConfig struct {
	Latency time.Duration `mapstructure:"latency"`
}

type MockConfig struct {
	OTP  string `mapstructure:"otp"`
	MPIN string `mapstructure:"mpin"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info"},
		HTTP: HTTPConfig{Addr: ":8080"},
		Store: StoreConfig{
			Driver: "memory",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "novapay:session:", TTL: 24 * time.Hour},
			File:   FileConfig{Dir: ".novapay/sessions"},
		},
		Session:  SessionConfig{LockTTL: 30 * time.Second, ActionTimeout: 30 * time.Second},
		Simulate: SimulateConfig{Latency: 1500 * time.Millisecond},
		Mock:     MockConfig{OTP: "123456", MPIN: "123456"},
		Input:    InputConfig{MaxSize: 4096},
	}
}

// SetDefaults registers the defaults on v so they apply without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
	v.SetDefault("store.redis.ttl", d.Store.Redis.TTL)
	v.SetDefault("store.file.dir", d.Store.File.Dir)
	v.SetDefault("store.encryption_key", d.Store.EncryptionKey)
	v.SetDefault("session.lock_ttl", d.Session.LockTTL)
	v.SetDefault("session.action_timeout", d.Session.ActionTimeout)
	v.SetDefault("simulate.latency", d.Simulate.Latency)
	v.SetDefault("mock.otp", d.Mock.OTP)
	v.SetDefault("mock.mpin", d.Mock.MPIN)
	v.SetDefault("input.max_size", d.Input.MaxSize)
	v.SetDefault("catalog", d.Catalog)
}

// Init prepares v: defaults, environment and, if present, the config file.
// An explicit cfgFile must exist; the default search path may be empty.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("novapay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	// NOVAPAY_STORE_REDIS_ADDR for store.redis.addr
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// BindFlags maps command-line flags onto config keys. Flags missing from
// fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// Dir returns the user config directory for NovaPay.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "novapay")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".novapay"
	}
	return filepath.Join(home, ".config", "novapay")
}

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels lists accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidDrivers lists accepted store.driver values.
func ValidDrivers() []string {
	return []string{"memory", "redis", "file"}
}

// Validate reports every invalid setting. An empty result means valid.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, "must be one of "+strings.Join(ValidLogLevels(), ", "))
	}
	if c.HTTP.Addr == "" {
		add("http.addr", c.HTTP.Addr, "must not be empty")
	}
	if !slices.Contains(ValidDrivers(), c.Store.Driver) {
		add("store.driver", c.Store.Driver, "must be one of "+strings.Join(ValidDrivers(), ", "))
	}
	if c.Store.Driver == "redis" && c.Store.Redis.Addr == "" {
		add("store.redis.addr", c.Store.Redis.Addr, "required when store.driver is redis")
	}
	if c.Store.Driver == "file" && c.Store.File.Dir == "" {
		add("store.file.dir", c.Store.File.Dir, "required when store.driver is file")
	}
	if c.Store.Redis.TTL < 0 {
		add("store.redis.ttl", c.Store.Redis.TTL, "must not be negative")
	}
	if c.Session.LockTTL <= 0 {
		add("session.lock_ttl", c.Session.LockTTL, "must be positive")
	}
	if c.Session.ActionTimeout < 0 {
		add("session.action_timeout", c.Session.ActionTimeout, "must not be negative")
	}
	if c.Simulate.Latency < 0 {
		add("simulate.latency", c.Simulate.Latency, "must not be negative")
	}
	if !sixDigits(c.Mock.OTP) {
		add("mock.otp", c.Mock.OTP, "must be 6 digits")
	}
	if !sixDigits(c.Mock.MPIN) {
		add("mock.mpin", c.Mock.MPIN, "must be 6 digits")
	}
	if c.Input.MaxSize <= 0 {
		add("input.max_size", c.Input.MaxSize, "must be positive")
	}
	return errs
}

func sixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
