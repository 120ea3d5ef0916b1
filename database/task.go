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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/database/types"
)

var (
	// ErrTaskExists is returned when enqueueing a task ID that is already queued
	ErrTaskExists = errors.New("task already queued")
	// ErrTaskQueueEmpty is returned when there are no queued tasks
	ErrTaskQueueEmpty = errors.New("task queue empty")
)

// QueuedTask is a raw entry from the persisted task queue
type QueuedTask struct {
	Seq     uint64
	Payload []byte
}

// TaskExists reports whether a task ID is currently queued
func (d *Database) TaskExists(taskId string, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	_, err := d.blob.Get(txn.Blob(), types.TaskIdBlobKey(taskId))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TaskEnqueue appends a task to the end of the queue and returns its
// sequence number. Task IDs are unique among queued tasks
func (d *Database) TaskEnqueue(
	taskId string,
	payload []byte,
	txn *Txn,
) (uint64, error) {
	if txn == nil {
		var seq uint64
		err := d.BlobTxn(true).Do(func(txn *Txn) error {
			var err error
			seq, err = d.TaskEnqueue(taskId, payload, txn)
			return err
		})
		return seq, err
	}
	if txn.Blob() == nil {
		return 0, types.ErrBlobStoreUnavailable
	}
	exists, err := d.TaskExists(taskId, txn)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%w: %s", ErrTaskExists, taskId)
	}
	var seq uint64
	seqVal, err := d.blob.Get(txn.Blob(), []byte(types.TaskSequenceBlobKey))
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, err
		}
	} else {
		seq = types.BytesToUint64(seqVal)
	}
	seq++
	if err := d.blob.Set(
		txn.Blob(),
		[]byte(types.TaskSequenceBlobKey),
		types.Uint64ToBytes(seq),
	); err != nil {
		return 0, err
	}
	if err := d.blob.Set(txn.Blob(), types.TaskBlobKey(seq), payload); err != nil {
		return 0, err
	}
	if err := d.blob.Set(
		txn.Blob(),
		types.TaskIdBlobKey(taskId),
		types.Uint64ToBytes(seq),
	); err != nil {
		return 0, err
	}
	return seq, nil
}

// TaskPeek returns the oldest queued task without removing it
func (d *Database) TaskPeek(txn *Txn) (*QueuedTask, error) {
	tasks, err := d.TaskList(1, txn)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrTaskQueueEmpty
	}
	return &tasks[0], nil
}

// TaskList returns up to limit queued tasks in scheduling order. A limit of
// zero or less returns every queued task
func (d *Database) TaskList(limit int, txn *Txn) ([]QueuedTask, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	prefix := []byte(types.TaskBlobKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []QueuedTask
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		ret = append(
			ret,
			QueuedTask{
				Seq:     types.TaskSeqFromBlobKey(item.Key()),
				Payload: val,
			},
		)
		if limit > 0 && len(ret) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// TaskRemove removes a task from the queue and releases its ID
func (d *Database) TaskRemove(
	seq uint64,
	taskId string,
	txn *Txn,
) error {
	if txn == nil {
		return d.BlobTxn(true).Do(func(txn *Txn) error {
			return d.TaskRemove(seq, taskId, txn)
		})
	}
	if txn.Blob() == nil {
		return types.ErrBlobStoreUnavailable
	}
	if err := d.blob.Delete(txn.Blob(), types.TaskBlobKey(seq)); err != nil {
		return err
	}
	return d.blob.Delete(txn.Blob(), types.TaskIdBlobKey(taskId))
}
