package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"parley/internal/config"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

type configOutput struct {
	ConfigPath string              `json:"config_path" toml:"config_path"`
	Backend    effectiveBackend    `json:"backend" toml:"backend"`
	Sync       effectiveSyncConfig `json:"sync" toml:"sync"`
	Logging    effectiveLogConfig  `json:"logging" toml:"logging"`
}

type effectiveBackend struct {
	Address string `json:"address" toml:"address"`
	BaseURL string `json:"base_url" toml:"base_url"`
}

type effectiveSyncConfig struct {
	PollIntervalMs   int `json:"poll_interval_ms" toml:"poll_interval_ms"`
	RequestTimeoutMs int `json:"request_timeout_ms" toml:"request_timeout_ms"`
}

type effectiveLogConfig struct {
	Level string `json:"level" toml:"level"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	cfg := config.Default()
	if !*defaults {
		cfg, err = config.Load()
		if err != nil {
			return err
		}
	}

	payload := configOutput{
		ConfigPath: path,
		Backend: effectiveBackend{
			Address: cfg.BackendAddress(),
			BaseURL: cfg.BackendBaseURL(),
		},
		Sync: effectiveSyncConfig{
			PollIntervalMs:   int(cfg.PollInterval().Milliseconds()),
			RequestTimeoutMs: int(cfg.RequestTimeout().Milliseconds()),
		},
		Logging: effectiveLogConfig{
			Level: cfg.LogLevel(),
		},
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
