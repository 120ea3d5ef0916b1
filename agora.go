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

// Package agora wires the governance engine, its storage, the continuation
// scheduler and the REST API into a runnable node
package agora

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/agora/api"
	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/audit"
	"github.com/blinklabs-io/agora/internal/collab"
	"github.com/blinklabs-io/agora/scheduler"
)

type Node struct {
	config        Config
	db            *database.Database
	eventBus      *event.Bus
	auditLog      *audit.Log
	scheduler     *scheduler.Scheduler
	engine        *governance.Engine
	settings      *governance.Settings
	apiServer     *api.Server
	timer         *scheduler.Timer
	shutdownFuncs []func(context.Context) error
	runCancel     context.CancelFunc
	runWg         sync.WaitGroup
	// mu guards the run state against a concurrent Stop
	mu           sync.Mutex
	done         chan struct{}
	initOnce     sync.Once
	initErr      error
	shutdownOnce sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config: cfg,
		done:   make(chan struct{}),
	}
	return n, nil
}

// Engine returns the governance engine. It is nil until Init has run
func (n *Node) Engine() *governance.Engine {
	return n.engine
}

// RecentEvents returns up to limit committed governance events, newest first
func (n *Node) RecentEvents(limit int) []event.Event {
	if n.auditLog == nil {
		return nil
	}
	return n.auditLog.Recent(limit)
}

// Settings returns the settings store. It is nil until Init has run
func (n *Node) Settings() *governance.Settings {
	return n.settings
}

// Init opens the database and builds the governance engine without starting
// any background work. Run calls it implicitly
func (n *Node) Init() error {
	n.initOnce.Do(func() {
		n.initErr = n.init()
	})
	return n.initErr
}

func (n *Node) init() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		if db != nil {
			db.Close() //nolint:errcheck
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.shutdownFuncs = append(n.shutdownFuncs, func(context.Context) error {
		return n.db.Close()
	})
	n.eventBus = event.NewBus(n.config.promRegistry, n.config.logger)
	n.auditLog = audit.New(n.eventBus, n.config.logger, audit.DefaultSize)
	n.auditLog.Start()
	// Seed settings
	n.settings = governance.NewSettings(n.db)
	if err := n.settings.Seed(n.config.settings, nil); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	// Load scheduler
	sched, err := scheduler.New(scheduler.Config{
		Database:     n.db,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		PollInterval: n.config.schedulerPollInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to load scheduler: %w", err)
	}
	n.scheduler = sched
	// Load governance engine
	collaborators, accounts := n.collaborators()
	engine, err := governance.New(governance.Config{
		Database:          n.db,
		Scheduler:         n.scheduler,
		EventBus:          n.eventBus,
		Logger:            n.config.logger,
		PromRegistry:      n.config.promRegistry,
		Tokens:            collaborators.Tokens,
		Escrow:            collaborators.Escrow,
		Accounts:          collaborators.Accounts,
		Onboarding:        collaborators.Onboarding,
		Settings:          n.settings,
		GovernanceAccount: n.config.governanceAccount,
		Funds:             n.config.funds,
	})
	if err != nil {
		return fmt.Errorf("failed to load governance engine: %w", err)
	}
	n.engine = engine
	if accounts != nil {
		accounts.OnTrustChange(n.engine.ChangeTrust)
	}
	if err := n.engine.Bootstrap(context.Background()); err != nil {
		return fmt.Errorf("failed to bootstrap governance engine: %w", err)
	}
	return nil
}

// collaborators fills in-memory stand-ins for any collaborator not
// configured. The stand-in accounts system is returned so trust changes can
// be routed back to the engine
func (n *Node) collaborators() (Collaborators, *collab.Accounts) {
	c := n.config.collaborators
	tokens := collab.NewTokens()
	if c.Tokens == nil {
		c.Tokens = tokens
		if n.config.isDevMode() {
			funds := n.config.funds
			if funds == nil {
				funds = governance.DefaultFunds()
			}
			for fund := range funds {
				tokens.Issue(fund, devFundBalance)
			}
		}
	}
	if c.Escrow == nil {
		c.Escrow = collab.NewEscrow(tokens)
	}
	if c.Onboarding == nil {
		c.Onboarding = collab.NewOnboarding(tokens)
	}
	var accounts *collab.Accounts
	if c.Accounts == nil {
		accounts = collab.NewAccounts()
		c.Accounts = accounts
	}
	if n.config.collaborators.Tokens != nil &&
		(n.config.collaborators.Escrow == nil || n.config.collaborators.Onboarding == nil) {
		n.config.logger.Warn(
			"in-memory escrow or onboarding stand-in does not share the configured token ledger",
		)
	}
	return c, accounts
}

// AdvanceCycle starts a new cycle and runs every resulting continuation to
// completion
func (n *Node) AdvanceCycle(ctx context.Context) error {
	if err := n.Init(); err != nil {
		return err
	}
	if err := n.engine.AdvanceCycle(ctx); err != nil &&
		!errors.Is(err, scheduler.ErrDuplicateTask) {
		return err
	}
	return n.scheduler.Drain(ctx)
}

// DecayVoices applies any elapsed decay intervals and runs the resulting
// continuations to completion
func (n *Node) DecayVoices(ctx context.Context) error {
	if err := n.Init(); err != nil {
		return err
	}
	if err := n.engine.DecayVoices(ctx); err != nil &&
		!errors.Is(err, scheduler.ErrDuplicateTask) {
		return err
	}
	return n.scheduler.Drain(ctx)
}

func (n *Node) Run() error {
	select {
	case <-n.done:
		return nil
	default:
	}
	if err := n.Init(); err != nil {
		return err
	}
	n.mu.Lock()
	select {
	case <-n.done:
		n.mu.Unlock()
		return nil
	default:
	}
	if err := n.start(); err != nil {
		n.mu.Unlock()
		return err
	}
	n.mu.Unlock()
	n.config.logger.Info(
		"node started",
		"component", "node",
		"run_mode", n.config.runMode,
	)

	// Wait for shutdown signal
	<-n.done
	return nil
}

// start must be called with mu held
func (n *Node) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	n.runCancel = cancel
	// Start continuation scheduler
	n.runWg.Add(1)
	go func() {
		defer n.runWg.Done()
		if err := n.scheduler.Run(ctx); err != nil {
			n.config.logger.Error(
				"scheduler stopped",
				"component", "node",
				"error", err,
			)
		}
	}()
	// Start cycle timer
	n.startTimer(ctx)
	// Start API
	if n.config.apiListenAddress != "" {
		n.apiServer = api.New(
			api.Config{
				ListenAddress:    n.config.apiListenAddress,
				JWTSecret:        n.config.jwtSecret,
				ShutdownTimeout:  n.config.shutdownTimeout,
				MaxRequestsPerIP: n.config.apiMaxRequestsPerIP,
				CORSAllowOrigins: n.config.apiCorsOrigins,
				Events:           n.auditLog,
			},
			n.engine,
			n.config.logger,
		)
		if err := n.apiServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}
	return nil
}

// startTimer registers the cycle and decay ticks. The timer ticks at the
// shorter of the two intervals and the longer one runs every N ticks
func (n *Node) startTimer(ctx context.Context) {
	cycleInterval := n.config.cycleInterval
	decayInterval := n.config.decayCheckInterval
	if cycleInterval == 0 && decayInterval == 0 {
		return
	}
	base := decayInterval
	if base == 0 || (cycleInterval > 0 && cycleInterval < base) {
		base = cycleInterval
	}
	n.timer = scheduler.NewTimer(base)
	every := func(interval time.Duration) int {
		return max(1, int(interval/base))
	}
	logger := n.config.logger.With("component", "node")
	if cycleInterval > 0 {
		n.timer.Register(
			every(cycleInterval),
			func() {
				err := n.engine.AdvanceCycle(ctx)
				if err != nil && !errors.Is(err, scheduler.ErrDuplicateTask) {
					logger.Error("failed to queue cycle advance", "error", err)
				}
			},
			func() {
				logger.Warn("cycle advance still running, skipping tick")
			},
		)
	}
	if decayInterval > 0 {
		n.timer.Register(
			every(decayInterval),
			func() {
				err := n.engine.DecayVoices(ctx)
				if err != nil && !errors.Is(err, scheduler.ErrDuplicateTask) {
					logger.Error("failed to queue voice decay", "error", err)
				}
			},
			nil,
		)
	}
	n.timer.Start()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	n.mu.Lock()
	defer n.mu.Unlock()

	// Phase 1: Stop accepting new work
	if n.apiServer != nil {
		if stopErr := n.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("API shutdown: %w", stopErr))
		}
	}
	if n.timer != nil {
		n.timer.Stop()
	}

	// Phase 2: Let the current continuation step finish
	if n.runCancel != nil {
		n.runCancel()
	}
	n.runWg.Wait()

	// Phase 3: Cleanup resources
	if n.auditLog != nil {
		n.auditLog.Stop()
	}
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
