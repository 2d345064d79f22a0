package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrSecretRequired = errors.New("ALTCHA_SECRET is required")

type Config struct {
	HTTPListenAddr string        `yaml:"http_listen_addr"`
	TCPListenAddr  string        `yaml:"tcp_listen_addr"`
	ShutdownWait   time.Duration `yaml:"shutdown_wait"`
	LogLevel       string        `yaml:"log_level"`
	Altcha         AltchaConfig  `yaml:"altcha"`
	Replay         ReplayConfig  `yaml:"replay"`
	NATS           NATSConfig    `yaml:"nats"`
}

type AltchaConfig struct {
	Secret     string        `yaml:"secret"`
	Complexity int64         `yaml:"complexity"`
	Algorithm  string        `yaml:"algorithm"`
	Expires    time.Duration `yaml:"expires"`
	Field      string        `yaml:"field"`
	Shape      string        `yaml:"shape"`
	Floating   bool          `yaml:"floating"`
}

type ReplayConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func atoi64(s string, def int64) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func boolean(s string, def bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return def
}

func Default() Config {
	return Config{
		HTTPListenAddr: ":8080",
		ShutdownWait:   5 * time.Second,
		LogLevel:       "info",
		Altcha: AltchaConfig{
			Complexity: 100_000,
			Algorithm:  "SHA-256",
			Expires:    10 * time.Minute,
			Field:      "altcha",
			Shape:      "current",
		},
		Replay: ReplayConfig{
			Enabled:    true,
			DefaultTTL: 10 * time.Minute,
		},
		NATS: NATSConfig{SubjectPrefix: "altcha"},
	}
}

// Parse returns defaults overlaid with environment variables. Values that do
// not parse keep the default.
func Parse() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// Load builds the config from defaults, the optional CONFIG_FILE and the
// environment, in that order, and validates it.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPListenAddr = getenv("HTTP_LISTEN_ADDR", cfg.HTTPListenAddr)
	cfg.TCPListenAddr = getenv("TCP_LISTEN_ADDR", cfg.TCPListenAddr)
	cfg.ShutdownWait = duration(os.Getenv("SHUTDOWN_WAIT"), cfg.ShutdownWait)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)

	cfg.Altcha.Secret = getenv("ALTCHA_SECRET", cfg.Altcha.Secret)
	cfg.Altcha.Complexity = atoi64(os.Getenv("ALTCHA_COMPLEXITY"), cfg.Altcha.Complexity)
	cfg.Altcha.Algorithm = getenv("ALTCHA_ALGORITHM", cfg.Altcha.Algorithm)
	cfg.Altcha.Expires = duration(os.Getenv("ALTCHA_EXPIRES"), cfg.Altcha.Expires)
	cfg.Altcha.Field = getenv("ALTCHA_FIELD", cfg.Altcha.Field)
	cfg.Altcha.Shape = getenv("ALTCHA_SHAPE", cfg.Altcha.Shape)
	cfg.Altcha.Floating = boolean(os.Getenv("ALTCHA_FLOATING"), cfg.Altcha.Floating)

	cfg.Replay.Enabled = boolean(os.Getenv("REPLAY_PROTECTION"), cfg.Replay.Enabled)
	cfg.Replay.DefaultTTL = duration(os.Getenv("REPLAY_TTL"), cfg.Replay.DefaultTTL)
	cfg.Replay.RedisAddr = getenv("REDIS_ADDR", cfg.Replay.RedisAddr)
	cfg.Replay.RedisPassword = getenv("REDIS_PASSWORD", cfg.Replay.RedisPassword)
	cfg.Replay.RedisDB = atoi(os.Getenv("REDIS_DB"), cfg.Replay.RedisDB)

	cfg.NATS.URL = getenv("NATS_URL", cfg.NATS.URL)
	cfg.NATS.SubjectPrefix = getenv("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Altcha.Secret) == "" {
		return ErrSecretRequired
	}
	if c.Altcha.Complexity <= 0 {
		return fmt.Errorf("'complexity' must be positive, got %d", c.Altcha.Complexity)
	}
	switch c.Altcha.Algorithm {
	case "SHA-256", "SHA-384", "SHA-512":
	default:
		return fmt.Errorf("unsupported 'algorithm' %q", c.Altcha.Algorithm)
	}
	switch c.Altcha.Shape {
	case "current", "legacy":
	default:
		return fmt.Errorf("unknown payload 'shape' %q", c.Altcha.Shape)
	}
	if c.Altcha.Expires < 0 || (c.Altcha.Expires > 0 && c.Altcha.Expires < time.Second) {
		return fmt.Errorf("'expires' must be 0 (disabled) or at least 1s, got %s", c.Altcha.Expires)
	}
	if c.Replay.Enabled && c.Replay.DefaultTTL <= 0 {
		return fmt.Errorf("'replay default_ttl' must be positive when replay protection is enabled, got %s", c.Replay.DefaultTTL)
	}
	if c.Altcha.Field == "" {
		return fmt.Errorf("'field' must not be empty")
	}
	if c.HTTPListenAddr == "" && c.TCPListenAddr == "" {
		return fmt.Errorf("at least one of HTTP_LISTEN_ADDR and TCP_LISTEN_ADDR is required")
	}
	return nil
}
