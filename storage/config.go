package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadConfig loads config.json from the data directory. A missing file
// yields the defaults; a corrupt one is an error. Keys absent from the file
// get their defaults while explicit zero values are kept.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile is LoadConfig for an explicit path.
func LoadConfigFile(path string) (*Config, error) {
	jsonBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	ApplyMissingDefaults(config, detectPresentKeys(jsonBytes))
	return config, nil
}

// SaveConfig writes config.json atomically.
func SaveConfig(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return AtomicWriteJSON(path, config)
}

// CreateConfigIfMissing writes a default config.json if none exists.
func CreateConfigIfMissing() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return SaveConfig(DefaultConfig())
	}
	return nil
}

// ResolveModulePath returns the sandboxed core path from the config, made
// absolute against the modules directory when relative. It returns "" when
// no module is configured.
func ResolveModulePath(config *Config) (string, error) {
	if config.WasmModule == "" || filepath.IsAbs(config.WasmModule) {
		return config.WasmModule, nil
	}
	dir, err := GetModulesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.WasmModule), nil
}
