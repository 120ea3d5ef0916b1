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

// CommitTimestampError reports that the governance records and the
// continuation queue were last committed at different times, so one of them
// holds a step the other never saw
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: records at %d, task queue at %d",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkCommitTimestamp verifies both stores saw the same last commit. A
// fresh metadata store has nothing to compare against
func (d *Database) checkCommitTimestamp() error {
	recordsTs, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	if recordsTs <= 0 {
		return nil
	}
	queueTs, err := d.blob.GetCommitTimestamp()
	if err != nil && !errors.Is(err, types.ErrBlobKeyNotFound) {
		return fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if queueTs != recordsTs {
		return CommitTimestampError{
			MetadataTimestamp: recordsTs,
			BlobTimestamp:     queueTs,
		}
	}
	return nil
}

// updateCommitTimestamp stamps both sides of a coordinated transaction
func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	return errors.Join(
		d.metadata.SetCommitTimestamp(timestamp, txn.Metadata()),
		d.blob.SetCommitTimestamp(timestamp, txn.Blob()),
	)
}
