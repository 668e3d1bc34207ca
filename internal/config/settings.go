package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultBackendAddress = "127.0.0.1:7788"
const (
	defaultPollIntervalMs   = 5000
	defaultRequestTimeoutMs = 10000
)

type Config struct {
	Backend BackendConfig `toml:"backend"`
	Sync    SyncConfig    `toml:"sync"`
	Logging LoggingConfig `toml:"logging"`
}

type BackendConfig struct {
	Address string `toml:"address"`
}

type SyncConfig struct {
	PollIntervalMs   int `toml:"poll_interval_ms"`
	RequestTimeoutMs int `toml:"request_timeout_ms"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Backend: BackendConfig{
			Address: defaultBackendAddress,
		},
		Sync: SyncConfig{
			PollIntervalMs:   defaultPollIntervalMs,
			RequestTimeoutMs: defaultRequestTimeoutMs,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func (c Config) BackendAddress() string {
	addr := strings.TrimSpace(c.Backend.Address)
	if addr == "" {
		return defaultBackendAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultBackendAddress
	}
	return addr
}

func (c Config) BackendBaseURL() string {
	return "http://" + c.BackendAddress()
}

func (c Config) PollInterval() time.Duration {
	if c.Sync.PollIntervalMs <= 0 {
		return defaultPollIntervalMs * time.Millisecond
	}
	return time.Duration(c.Sync.PollIntervalMs) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	if c.Sync.RequestTimeoutMs <= 0 {
		return defaultRequestTimeoutMs * time.Millisecond
	}
	return time.Duration(c.Sync.RequestTimeoutMs) * time.Millisecond
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
