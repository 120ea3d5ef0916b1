// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "agora.config"

const (
	DefaultShutdownTimeout       = "30s"
	DefaultCycleInterval         = "168h"
	DefaultDecayCheckInterval    = "1h"
	DefaultSchedulerPollInterval = "1s"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// RunMode represents the operational mode of the agora node
type RunMode string

const (
	RunModeServe RunMode = "serve" // Governance node with external collaborators (default)
	RunModeDev   RunMode = "dev"   // Development mode (funded in-memory collaborators)
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

// IsDevMode returns true if the mode enables development behaviors
func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type Config struct {
	DatabasePath          string            `yaml:"databasePath"          split_words:"true"`
	BindAddr              string            `yaml:"bindAddr"              split_words:"true"`
	JWTSecret             string            `yaml:"jwtSecret"             envconfig:"JWT_SECRET"`
	ShutdownTimeout       string            `yaml:"shutdownTimeout"       split_words:"true"`
	CycleInterval         string            `yaml:"cycleInterval"         split_words:"true"`
	DecayCheckInterval    string            `yaml:"decayCheckInterval"    split_words:"true"`
	SchedulerPollInterval string            `yaml:"schedulerPollInterval" split_words:"true"`
	GovernanceAccount     string            `yaml:"governanceAccount"     split_words:"true"`
	Funds                 map[string]string `yaml:"funds"`

	// Settings holds initial values for the settings store as decimal strings
	Settings      map[string]string `yaml:"settings"`
	RunMode       RunMode           `yaml:"runMode"       split_words:"true"`
	APIPort       uint              `yaml:"apiPort"       envconfig:"API_PORT"`
	MetricsPort   uint              `yaml:"metricsPort"   split_words:"true"`
	Tracing       bool              `yaml:"tracing"`
	TracingStdout bool              `yaml:"tracingStdout" split_words:"true"`

	// In-flight API requests per client IP (0 = unlimited)
	APIMaxRequestsPerIP int `yaml:"apiMaxRequestsPerIP" envconfig:"API_MAX_REQUESTS_PER_IP"`
	// Origins allowed to call the API from a browser, comma separated in the environment
	APICorsOrigins []string `yaml:"apiCorsOrigins" envconfig:"API_CORS_ORIGINS"`
}

// DefaultConfig returns a config populated with default values
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:          ".agora",
		BindAddr:              "0.0.0.0",
		ShutdownTimeout:       DefaultShutdownTimeout,
		CycleInterval:         DefaultCycleInterval,
		DecayCheckInterval:    DefaultDecayCheckInterval,
		SchedulerPollInterval: DefaultSchedulerPollInterval,
		RunMode:               RunModeServe,
		APIPort:               8080,
		APIMaxRequestsPerIP:   32,
		MetricsPort:           12799,
	}
}

func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.agora/agora.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".agora", "agora.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/agora/agora.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/agora/agora.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("agora", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	// Validate and default RunMode
	if !cfg.RunMode.Valid() {
		return nil, fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			cfg.RunMode,
		)
	}
	if cfg.RunMode == "" {
		cfg.RunMode = RunModeServe
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	durations := map[string]string{
		"shutdownTimeout":       c.ShutdownTimeout,
		"cycleInterval":         c.CycleInterval,
		"decayCheckInterval":    c.DecayCheckInterval,
		"schedulerPollInterval": c.SchedulerPollInterval,
	}
	for name, value := range durations {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if _, err := c.SettingValues(); err != nil {
		return err
	}
	return nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	return d, nil
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.ShutdownTimeout)
	return d
}

// CycleIntervalDuration returns the parsed cycle interval. Zero disables
// automatic cycle advances
func (c *Config) CycleIntervalDuration() time.Duration {
	d, _ := parseDuration(c.CycleInterval)
	return d
}

func (c *Config) DecayCheckIntervalDuration() time.Duration {
	d, _ := parseDuration(c.DecayCheckInterval)
	return d
}

func (c *Config) SchedulerPollIntervalDuration() time.Duration {
	d, _ := parseDuration(c.SchedulerPollInterval)
	return d
}

// SettingValues parses the initial settings values
func (c *Config) SettingValues() (map[string]decimal.Decimal, error) {
	ret := make(map[string]decimal.Decimal, len(c.Settings))
	for name, value := range c.Settings {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for setting %s: %w", name, err)
		}
		ret[name] = d
	}
	return ret, nil
}

// APIListenAddress returns the REST API listen address, or an empty string
// when the API is disabled
func (c *Config) APIListenAddress() string {
	if c.APIPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.APIPort)
}
