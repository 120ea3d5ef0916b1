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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/agora"
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds an agora node from the loaded configuration
func New(
	cfg *config.Config,
	logger *slog.Logger,
	registry prometheus.Registerer,
) (*agora.Node, error) {
	settings, err := cfg.SettingValues()
	if err != nil {
		return nil, err
	}
	jwtSecret := []byte(cfg.JWTSecret)
	apiListenAddress := cfg.APIListenAddress()
	if apiListenAddress != "" && len(jwtSecret) == 0 && cfg.RunMode.IsDevMode() {
		logger.Warn(
			"no jwtSecret configured, using an insecure development secret",
			"component", "node",
		)
		jwtSecret = []byte("agora-dev")
	}
	return agora.New(
		agora.NewConfig(
			agora.WithLogger(logger),
			agora.WithDatabasePath(cfg.DatabasePath),
			agora.WithRunMode(string(cfg.RunMode)),
			agora.WithShutdownTimeout(cfg.ShutdownTimeoutDuration()),
			agora.WithAPIListenAddress(apiListenAddress),
			agora.WithJWTSecret(jwtSecret),
			agora.WithAPIMaxRequestsPerIP(cfg.APIMaxRequestsPerIP),
			agora.WithAPICORSOrigins(cfg.APICorsOrigins),
			agora.WithCycleInterval(cfg.CycleIntervalDuration()),
			agora.WithDecayCheckInterval(cfg.DecayCheckIntervalDuration()),
			agora.WithSchedulerPollInterval(cfg.SchedulerPollIntervalDuration()),
			agora.WithGovernanceAccount(cfg.GovernanceAccount),
			agora.WithFunds(cfg.Funds),
			agora.WithSettings(settings),
			agora.WithPrometheusRegistry(registry),
			agora.WithTracing(cfg.Tracing),
			agora.WithTracingStdout(cfg.TracingStdout),
		),
	)
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout := cfg.ShutdownTimeoutDuration()
	if shutdownTimeout == 0 {
		shutdownTimeout = agora.DefaultShutdownTimeout
	}

	// Enable metrics with default prometheus registry
	n, err := New(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	// Metrics listener
	var metricsServer *http.Server
	metricsErr := make(chan error, 1)
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
		logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "node",
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				metricsErr <- fmt.Errorf("metrics listener: %w", err)
			}
		}()
	}
	shutdownMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run()
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		shutdownMetrics()
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-metricsErr:
		logger.Error("metrics server error", "error", err)
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}
		return err

	case err := <-errChan:
		shutdownMetrics()
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error("shutdown errors occurred", "error", stopErr)
			if err == nil {
				return stopErr
			}
		}
		if err != nil {
			logger.Error("node error", "error", err)
			return err
		}
		logger.Info("node stopped")
		return nil
	}
}
