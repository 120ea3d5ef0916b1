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

package database_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestCoordinatedTxnRollback(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	require.NoError(t, db.SetVoice(&models.Voice{
		Account: "alice",
		Scope:   "alliance",
		Balance: 100,
	}, txn))
	_, err := db.TaskEnqueue("task-1", []byte("payload"), txn)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	_, err = db.GetVoice("alice", "alliance", nil)
	require.ErrorIs(t, err, models.ErrVoiceNotFound)
	_, err = db.TaskPeek(nil)
	require.ErrorIs(t, err, database.ErrTaskQueueEmpty)
}

func TestCoordinatedTxnCommit(t *testing.T) {
	db := newTestDatabase(t)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetVoice(&models.Voice{
			Account: "alice",
			Scope:   "alliance",
			Balance: 100,
		}, txn); err != nil {
			return err
		}
		_, err := db.TaskEnqueue("task-1", []byte("payload"), txn)
		return err
	})
	require.NoError(t, err)

	voice, err := db.GetVoice("alice", "alliance", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), voice.Balance)
	task, err := db.TaskPeek(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), task.Payload)

	// Both stores carry the same commit timestamp
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metadataTs)
	assert.Equal(t, metadataTs, blobTs)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetSetting(&models.Setting{Name: "decay.pct"}, txn)
	}))
	// Move the metadata timestamp forward without touching the blob store
	require.NoError(t, db.Metadata().SetCommitTimestamp(1, nil))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.Error(t, err)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.MetadataTimestamp)
	require.NotNil(t, db)
	db.Close() //nolint:errcheck
}

func TestTaskQueueOrderAndUniqueness(t *testing.T) {
	db := newTestDatabase(t)
	for _, id := range []string{"a", "b", "c"} {
		_, err := db.TaskEnqueue(id, []byte(id), nil)
		require.NoError(t, err)
	}
	_, err := db.TaskEnqueue("b", []byte("again"), nil)
	require.ErrorIs(t, err, database.ErrTaskExists)

	tasks, err := db.TaskList(0, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []byte("a"), tasks[0].Payload)
	assert.Equal(t, []byte("c"), tasks[2].Payload)

	require.NoError(t, db.TaskRemove(tasks[0].Seq, "a", nil))
	exists, err := db.TaskExists("a", nil)
	require.NoError(t, err)
	assert.False(t, exists)

	// A released ID can be queued again, at the back of the queue
	_, err = db.TaskEnqueue("a", []byte("a2"), nil)
	require.NoError(t, err)
	tasks, err = db.TaskList(0, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []byte("b"), tasks[0].Payload)
	assert.Equal(t, []byte("a2"), tasks[2].Payload)
}

func TestDefaults(t *testing.T) {
	db := newTestDatabase(t)
	state, err := db.GetCycleState(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.Cycle)

	level, err := db.GetSupportLevel(3, "alliance", nil)
	require.NoError(t, err)
	assert.Equal(t, "alliance", level.FundType)

	aux, err := db.GetProposalAux(42, nil)
	require.NoError(t, err)
	assert.Empty(t, aux.Attributes)

	participant, err := db.GetParticipant("nobody", 1, nil)
	require.NoError(t, err)
	assert.Zero(t, participant.Count)

	_, err = db.GetProposal(42, nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestIncrementParticipant(t *testing.T) {
	db := newTestDatabase(t)
	for range 3 {
		require.NoError(t, db.IncrementParticipant("alice", 4, nil))
	}
	require.NoError(t, db.IncrementParticipant("alice", 5, nil))
	participant, err := db.GetParticipant("alice", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), participant.Count)
	participant, err = db.GetParticipant("alice", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), participant.Count)
}

func TestRollbackHooks(t *testing.T) {
	db := newTestDatabase(t)
	var undone []int
	txn := db.Transaction(true)
	txn.OnRollback(func() { undone = append(undone, 1) })
	txn.OnRollback(func() { undone = append(undone, 2) })
	require.NoError(t, txn.Rollback())
	assert.Equal(t, []int{2, 1}, undone)

	undone = nil
	txn = db.Transaction(true)
	txn.OnRollback(func() { undone = append(undone, 1) })
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Rollback())
	assert.Empty(t, undone)
}

func TestCommitHooks(t *testing.T) {
	db := newTestDatabase(t)
	var published []string
	txn := db.Transaction(true)
	txn.OnCommit(func() { published = append(published, "a") })
	txn.OnCommit(func() { published = append(published, "b") })
	require.NoError(t, txn.Commit())
	assert.Equal(t, []string{"a", "b"}, published)

	published = nil
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		txn.OnCommit(func() { published = append(published, "c") })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Empty(t, published)
}
