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
	"github.com/blinklabs-io/agora/database/types"
)

// GetCommitTimestamp returns the timestamp written by the last coordinated
// commit
func (d *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := d.Get(txn, []byte(types.CommitTimestampBlobKey))
	if err != nil {
		return 0, err
	}
	return int64(types.BytesToUint64(val)), nil //nolint:gosec
}

func (d *BlobStoreBadger) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	return d.Set(
		txn,
		[]byte(types.CommitTimestampBlobKey),
		types.Uint64ToBytes(uint64(timestamp)), //nolint:gosec
	)
}
