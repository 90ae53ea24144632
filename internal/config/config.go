package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Workouts  WorkoutsConfig  `yaml:"workouts"`
	Treadmill TreadmillConfig `yaml:"treadmill"`
	History   HistoryConfig   `yaml:"history"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type WorkoutsConfig struct {
	Dir string `yaml:"dir"`
}

type TreadmillConfig struct {
	// Device is matched as a substring of the advertised name.
	Device     string   `yaml:"device"`
	ScanWindow Duration `yaml:"scan_window"`
	Simulate   bool     `yaml:"simulate"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix STRIDE_ and underscore-separated
// paths:
//
//	STRIDE_SERVER_HOST, STRIDE_SERVER_PORT,
//	STRIDE_WORKOUTS_DIR, STRIDE_HISTORY_DIR,
//	STRIDE_TREADMILL_DEVICE, STRIDE_TREADMILL_SIMULATE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRIDE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STRIDE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STRIDE_WORKOUTS_DIR"); v != "" {
		cfg.Workouts.Dir = v
	}
	if v := os.Getenv("STRIDE_HISTORY_DIR"); v != "" {
		cfg.History.Dir = v
	}
	if v := os.Getenv("STRIDE_TREADMILL_DEVICE"); v != "" {
		cfg.Treadmill.Device = v
	}
	if v := os.Getenv("STRIDE_TREADMILL_SIMULATE"); v != "" {
		if simulate, err := strconv.ParseBool(v); err == nil {
			cfg.Treadmill.Simulate = simulate
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Treadmill.ScanWindow == 0 {
		cfg.Treadmill.ScanWindow = Duration(2 * time.Second)
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = "data"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Workouts.Dir == "" {
		return fmt.Errorf("workouts.dir is required")
	}
	if !c.Treadmill.Simulate && c.Treadmill.Device == "" {
		return fmt.Errorf("treadmill.device is required unless simulate is set")
	}
	return nil
}
