// config.go - configuration management for the groupsig daemon.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration.
type Config struct {
	// Node identity and peers
	NodeID  string            `json:"node_id"`
	Address string            `json:"address"`
	Peers   map[string]string `json:"peers"`

	// Protocol settings
	MinSeedBytes int    `json:"min_seed_bytes"`
	AuditLogPath string `json:"audit_log_path"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Performance
	MaxConcurrency int `json:"max_concurrency"`
	TimeoutSeconds int `json:"timeout_seconds"`

	// Rate limiting
	RateLimitTokens int `json:"rate_limit_tokens"`
	RateLimitRefill int `json:"rate_limit_refill"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:          "issuer",
		Address:         "127.0.0.1:8090",
		Peers:           map[string]string{},
		MinSeedBytes:    128,
		AuditLogPath:    "audit.log",
		LogLevel:        "info",
		LogFile:         "",
		MaxConcurrency:  4,
		TimeoutSeconds:  30,
		RateLimitTokens: 20,
		RateLimitRefill: 5,
	}
}

// LoadConfig loads configuration from file or creates a default one.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file.
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(config)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node_id must be set")
	}
	if c.Address == "" {
		return fmt.Errorf("address must be set")
	}
	if c.MinSeedBytes < 128 {
		return fmt.Errorf("min_seed_bytes must be at least 128")
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.RateLimitTokens <= 0 {
		return fmt.Errorf("rate_limit_tokens must be positive")
	}
	return nil
}
