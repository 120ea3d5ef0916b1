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

package agora

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// runMode constants for operational mode configuration
const (
	runModeServe = "serve"
	runModeDev   = "dev"
)

const (
	DefaultCycleInterval      = 7 * 24 * time.Hour
	DefaultDecayCheckInterval = time.Hour
	DefaultShutdownTimeout    = 30 * time.Second
	// devFundBalance is issued to every fund account when running with the
	// in-memory collaborators in dev mode
	devFundBalance = 1_000_000
)

// Collaborators are the external systems the governance engine moves value
// and reputation through. Any nil member is replaced by an in-memory
// stand-in
type Collaborators struct {
	Tokens     governance.TokenLedger
	Escrow     governance.Escrow
	Accounts   governance.Accounts
	Onboarding governance.Onboarding
}

type Config struct {
	promRegistry          prometheus.Registerer
	logger                *slog.Logger
	collaborators         Collaborators
	settings              map[string]decimal.Decimal
	funds                 map[string]string
	dataDir               string
	apiListenAddress      string
	apiMaxRequestsPerIP   int
	apiCorsOrigins        []string
	governanceAccount     string
	runMode               string
	jwtSecret             []byte
	tracing               bool
	tracingStdout         bool
	shutdownTimeout       time.Duration
	cycleInterval         time.Duration
	decayCheckInterval    time.Duration
	schedulerPollInterval time.Duration
}

// isDevMode returns true if running in development mode
func (c *Config) isDevMode() bool {
	return c.runMode == runModeDev
}

func (c *Config) validate() error {
	switch c.runMode {
	case "", runModeServe, runModeDev:
	default:
		return fmt.Errorf("unknown run mode: %s", c.runMode)
	}
	if c.apiListenAddress != "" && len(c.jwtSecret) == 0 {
		return errors.New("a JWT secret is required when the API is enabled")
	}
	if c.cycleInterval < 0 || c.decayCheckInterval < 0 {
		return errors.New("timer intervals must not be negative")
	}
	for fund, fundType := range c.funds {
		if fund == "" || fundType == "" {
			return fmt.Errorf("invalid fund mapping %q -> %q", fund, fundType)
		}
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new agora config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
		runMode:            runModeServe,
		shutdownTimeout:    DefaultShutdownTimeout,
		cycleInterval:      DefaultCycleInterval,
		decayCheckInterval: DefaultDecayCheckInterval,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithRunMode sets the operational mode ("serve" or "dev").
// "dev" mode funds the in-memory collaborators so proposals can be exercised locally.
func WithRunMode(mode string) ConfigOptionFunc {
	return func(c *Config) {
		c.runMode = mode
	}
}

// WithAPIListenAddress specifies the listen address for the REST API server.
// An empty string disables the server. The default is empty (disabled).
func WithAPIListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithAPIMaxRequestsPerIP bounds the in-flight API requests per client IP. 0 disables the limit
func WithAPIMaxRequestsPerIP(limit int) ConfigOptionFunc {
	return func(c *Config) {
		c.apiMaxRequestsPerIP = limit
	}
}

// WithAPICORSOrigins enables CORS on the API for the given origins
func WithAPICORSOrigins(origins []string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiCorsOrigins = slices.Clone(origins)
	}
}

// WithJWTSecret specifies the HS256 secret used to verify API caller tokens
func WithJWTSecret(secret []byte) ConfigOptionFunc {
	return func(c *Config) {
		c.jwtSecret = secret
	}
}

// WithCollaborators specifies the token ledger, escrow, accounts and onboarding systems
func WithCollaborators(collaborators Collaborators) ConfigOptionFunc {
	return func(c *Config) {
		c.collaborators = collaborators
	}
}

// WithSettings specifies initial values for the settings store. Values only
// apply to settings that have not been stored yet
func WithSettings(settings map[string]decimal.Decimal) ConfigOptionFunc {
	return func(c *Config) {
		if c.settings == nil {
			c.settings = make(map[string]decimal.Decimal, len(settings))
		}
		maps.Copy(c.settings, settings)
	}
}

// WithFunds specifies the fund accounts and the fund type each one backs
func WithFunds(funds map[string]string) ConfigOptionFunc {
	return func(c *Config) {
		c.funds = maps.Clone(funds)
	}
}

// WithGovernanceAccount specifies the account holding proposal stakes
func WithGovernanceAccount(account string) ConfigOptionFunc {
	return func(c *Config) {
		c.governanceAccount = account
	}
}

// WithCycleInterval specifies how often a new cycle starts. Zero disables the cycle timer
func WithCycleInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.cycleInterval = interval
	}
}

// WithDecayCheckInterval specifies how often elapsed decay intervals are checked
func WithDecayCheckInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.decayCheckInterval = interval
	}
}

// WithSchedulerPollInterval specifies how often the continuation queue is polled for due tasks
func WithSchedulerPollInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.schedulerPollInterval = interval
	}
}
