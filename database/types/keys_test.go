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

package types_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/agora/database/types"
	"github.com/stretchr/testify/assert"
)

func TestTaskBlobKeyOrdering(t *testing.T) {
	seqs := []uint64{1, 2, 255, 256, 65536, 1 << 40}
	for i := 1; i < len(seqs); i++ {
		prev := types.TaskBlobKey(seqs[i-1])
		cur := types.TaskBlobKey(seqs[i])
		assert.Equal(
			t,
			-1,
			bytes.Compare(prev, cur),
			"key for seq %d should sort before seq %d",
			seqs[i-1],
			seqs[i],
		)
	}
}

func TestTaskSeqFromBlobKey(t *testing.T) {
	for _, seq := range []uint64{0, 1, 42, 1 << 33} {
		assert.Equal(t, seq, types.TaskSeqFromBlobKey(types.TaskBlobKey(seq)))
	}
	assert.Equal(t, uint64(0), types.TaskSeqFromBlobKey([]byte("tq")))
}

func TestTaskIdBlobKey(t *testing.T) {
	key := types.TaskIdBlobKey("abc")
	assert.Equal(t, []byte("tiabc"), key)
	assert.True(t, bytes.HasPrefix(key, []byte(types.TaskIdBlobKeyPrefix)))
}
