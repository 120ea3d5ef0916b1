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

package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// vacuumInterval is how often a disk-backed store is vacuumed
const vacuumInterval = 24 * time.Hour

// sqlitePragmas enables WAL journaling and makes writers wait on locks
// instead of failing immediately
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=cache_size(-50000)"

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store.
// It holds proposals, votes, voice balances, delegations and cycle records.
type MetadataStoreSqlite struct {
	promRegistry prometheus.Registerer
	db           *gorm.DB
	logger       *slog.Logger
	stopVacuum   chan struct{}
	vacuumWg     sync.WaitGroup
	dataDir      string
	closeOnce    sync.Once
}

// New creates a SQLite metadata store. Uses in-memory database if dataDir is empty.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn, err := sqliteDSN(dataDir)
	if err != nil {
		return nil, err
	}
	gormDb, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	d := &MetadataStoreSqlite{
		db:           gormDb,
		dataDir:      dataDir,
		logger:       logger,
		promRegistry: promRegistry,
	}
	if err := d.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return d, err
	}
	tables := append([]any{&CommitTimestamp{}}, models.MigrateModels...)
	for _, model := range tables {
		d.logger.Debug(
			fmt.Sprintf("creating table: %T", model),
			"component", "database",
		)
		if err := d.db.AutoMigrate(model); err != nil {
			return d, fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	if dataDir != "" {
		d.stopVacuum = make(chan struct{})
		d.vacuumWg.Add(1)
		go d.vacuumLoop()
	}
	return d, nil
}

// sqliteDSN returns the connection string for a store in dataDir. Each
// in-memory store gets its own named database so that separate stores in
// the same process don't share tables
func sqliteDSN(dataDir string) (string, error) {
	if dataDir == "" {
		return fmt.Sprintf(
			"file:agora-%s?mode=memory&cache=shared",
			uuid.NewString(),
		), nil
	}
	if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return fmt.Sprintf(
		"file:%s?%s",
		filepath.Join(dataDir, "metadata.sqlite"),
		sqlitePragmas,
	), nil
}

// vacuumLoop frees space left behind by erased voice balances, removed
// participant counters and cancelled proposals
func (d *MetadataStoreSqlite) vacuumLoop() {
	defer d.vacuumWg.Done()
	ticker := time.NewTicker(vacuumInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopVacuum:
			return
		case <-ticker.C:
		}
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
			"component", "database",
		)
		if err := d.db.Exec("VACUUM").Error; err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	}
}

// Close stops the vacuum loop and closes the connection. It is safe to call
// more than once
func (d *MetadataStoreSqlite) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.stopVacuum != nil {
			close(d.stopVacuum)
			d.vacuumWg.Wait()
		}
		sqlDb, dbErr := d.db.DB()
		if dbErr != nil {
			err = fmt.Errorf("get database handle: %w", dbErr)
			return
		}
		err = sqlDb.Close()
	})
	return err
}

// DB returns the underlying GORM database handle.
func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}

// Transaction creates a new database transaction.
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	return &sqliteTxn{
		db: d.DB().Begin(),
	}
}

// sqliteTxn wraps a gorm transaction so that it satisfies types.Txn
type sqliteTxn struct {
	db       *gorm.DB
	finished bool
}

func (t *sqliteTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Rollback().Error
}

// DB returns the gorm handle bound to the transaction
func (t *sqliteTxn) DB() *gorm.DB {
	return t.db
}

// resolveDB returns the gorm handle to use for a query. A nil txn runs the
// query directly against the database
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	tmpTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if tmpTxn.finished {
		return nil, errors.New("transaction already finished")
	}
	return tmpTxn.db, nil
}
