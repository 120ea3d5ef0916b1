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

package badger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

// gcDiscardRatio is the fraction of stale data a value log file must hold
// before it is rewritten
const gcDiscardRatio = 0.5

// BlobStoreBadger stores the continuation queue and commit timestamp in
// badger. Data is not persisted when no data dir is configured
type BlobStoreBadger struct {
	promRegistry   prometheus.Registerer
	db             *badger.DB
	logger         *slog.Logger
	stopGc         chan struct{}
	dataDir        string
	gcWg           sync.WaitGroup
	gcInterval     time.Duration
	blockCacheSize int64
	memTableSize   int64
	valueThreshold int64
	closeOnce      sync.Once
}

// New opens the store. Without a data dir the store lives in memory
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcInterval:     DefaultGcInterval,
		blockCacheSize: DefaultBlockCacheSize,
		memTableSize:   DefaultMemTableSize,
		valueThreshold: DefaultValueThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	d.db, err = badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	if d.promRegistry != nil {
		if err := d.promRegistry.Register(newSizeCollector(d.db)); err != nil {
			d.db.Close() //nolint:errcheck
			return nil, fmt.Errorf("register blob metrics: %w", err)
		}
	}
	// There's no value log to collect for in-memory stores
	if d.dataDir != "" && d.gcInterval > 0 {
		d.stopGc = make(chan struct{})
		d.gcWg.Add(1)
		go d.gcLoop()
	}
	return d, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	// The default INFO logging is a bit verbose
	if d.dataDir == "" {
		return badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(newBadgerLogger(d.logger)).
			WithLoggingLevel(badger.WARNING).
			WithValueThreshold(d.valueThreshold), nil
	}
	blobDir := filepath.Join(d.dataDir, "blob")
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return badger.Options{}, fmt.Errorf("create blob dir: %w", err)
	}
	return badger.DefaultOptions(blobDir).
		WithLogger(newBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(d.blockCacheSize).
		WithMemTableSize(d.memTableSize).
		WithValueThreshold(d.valueThreshold).
		WithCompression(options.Snappy), nil
}

// gcLoop rewrites value log files while each pass reclaims space. Removed
// tasks leave stale entries behind, so this keeps the queue from growing on disk
func (d *BlobStoreBadger) gcLoop() {
	defer d.gcWg.Done()
	ticker := time.NewTicker(d.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopGc:
			return
		case <-ticker.C:
		}
		var err error
		for err == nil {
			err = d.db.RunValueLogGC(gcDiscardRatio)
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			d.logger.Warn(
				"blob value log GC failed",
				"component", "database",
				"error", err,
			)
		}
	}
}

// Close stops background GC and closes the database. It is safe to call
// more than once
func (d *BlobStoreBadger) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.stopGc != nil {
			close(d.stopGc)
			d.gcWg.Wait()
		}
		err = d.db.Close()
	})
	return err
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

// NewTransaction starts a transaction. Read-only transactions must still be
// finished with Rollback
func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

// Get returns a copy of the value stored under key
func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.txn(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.txn(txn)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	tx, err := d.txn(txn)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// NewIterator returns an iterator over keys with the given prefix. Items
// are only readable while txn is open
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	tx, err := d.txn(txn)
	if err != nil {
		return &blobIterator{err: err}
	}
	return &blobIterator{
		iter: tx.NewIterator(badger.IteratorOptions{
			Prefix:         opts.Prefix,
			PrefetchValues: true,
			PrefetchSize:   16,
		}),
	}
}
