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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	TaskBlobKeyPrefix      = "tq"
	TaskIdBlobKeyPrefix    = "ti"
	TaskSequenceBlobKey    = "tseq"
	CommitTimestampBlobKey = "metadata_commit_timestamp"
)

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BytesToUint64(input []byte) uint64 {
	if len(input) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input[:8])
}

// TaskBlobKey returns the queue key for a task. Keys sort by sequence so that
// iteration over the prefix yields tasks in scheduling order
func TaskBlobKey(seq uint64) []byte {
	key := []byte(TaskBlobKeyPrefix)
	key = append(key, Uint64ToBytes(seq)...)
	return key
}

// TaskIdBlobKey returns the uniqueness index key for a task ID
func TaskIdBlobKey(taskId string) []byte {
	return slices.Concat([]byte(TaskIdBlobKeyPrefix), []byte(taskId))
}

// TaskSeqFromBlobKey extracts the sequence number from a queue key
func TaskSeqFromBlobKey(key []byte) uint64 {
	if len(key) < len(TaskBlobKeyPrefix)+8 {
		return 0
	}
	return BytesToUint64(key[len(TaskBlobKeyPrefix):])
}
