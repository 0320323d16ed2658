package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 3000
	defaultIdleTimeout   = 75 * time.Second
	defaultHeaderTimeout = 80 * time.Second
	defaultShutdownGrace = 30 * time.Second

	// EnvPort selects the listen port; it overrides the config file.
	EnvPort = "PORT"
	// EnvWorkers overrides the worker count (default: one per CPU).
	EnvWorkers = "NIGHTGLOW_WORKERS"
)

type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	switch value.Tag {
	case "!!int", "!!float":
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	default:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		if raw == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server  ServerConfig `yaml:"server"`
	Workers int          `yaml:"workers"`
}

type ServerConfig struct {
	BindAddr string `yaml:"bind_addr"`
	Port     int    `yaml:"port"`
	// IdleTimeout keeps idle keep-alive connections open comfortably longer
	// than typical intermediary idle timeouts (usually 60s).
	IdleTimeout Duration `yaml:"idle_timeout"`
	// ReadHeaderTimeout sits slightly above IdleTimeout so a connection is
	// never reaped mid-header by the server before the idle reaper fires.
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownGrace     Duration `yaml:"shutdown_grace"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file, fills in defaults, applies environment
// overrides, and validates the result. An empty path yields the defaults
// (plus environment overrides).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(defaultIdleTimeout)
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = Duration(defaultHeaderTimeout)
	}
	if c.Server.ShutdownGrace == 0 {
		c.Server.ShutdownGrace = Duration(defaultShutdownGrace)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) applyEnv() error {
	if raw := os.Getenv(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, raw, err)
		}
		c.Server.Port = port
	}
	if raw := os.Getenv(EnvWorkers); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, raw, err)
		}
		c.Workers = workers
	}
	return nil
}

func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Server.IdleTimeout.Duration() <= 0 {
		return fmt.Errorf("server.idle_timeout must be positive")
	}
	if c.Server.ReadHeaderTimeout.Duration() < c.Server.IdleTimeout.Duration() {
		return fmt.Errorf("server.read_header_timeout must not be below server.idle_timeout")
	}
	return nil
}
