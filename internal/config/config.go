// Package config loads the YAML server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Import  ImportConfig  `yaml:"import"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
}

// ImportConfig holds import-session tuning.
type ImportConfig struct {
	MaxSessions            int `yaml:"maxSessions"`
	SessionTimeoutMinutes  int `yaml:"sessionTimeoutMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// StorageConfig holds data locations and the database DSN. An empty DSN
// selects the in-memory record store (development mode).
type StorageConfig struct {
	DataDir     string `yaml:"dataDir"`
	PostgresDSN string `yaml:"postgresDsn"`
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8640,
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "32M",
			EnableCORS:   true,
			AllowOrigins: "",
		},
		Import: ImportConfig{
			MaxSessions:            50,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
	}
}

// GetServerAddr returns the host:port listen address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetUploadDir returns the directory for stored upload files.
func (c *Config) GetUploadDir() string {
	return filepath.Join(c.Storage.DataDir, "uploads")
}

// EnsureDirectories creates the data directories if absent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.DataDir, c.GetUploadDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
