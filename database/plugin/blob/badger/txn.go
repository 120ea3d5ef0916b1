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

	"github.com/blinklabs-io/agora/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

var (
	errTxnFinished   = errors.New("transaction already finished")
	errTxnOtherStore = errors.New("transaction from different store")
)

// badgerTxn implements types.Txn over a badger transaction
type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if !t.finished {
		t.finished = true
		t.tx.Discard()
	}
	return nil
}

// txn unwraps a transaction handed back by the caller
func (d *BlobStoreBadger) txn(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*badgerTxn)
	switch {
	case !ok:
		return nil, types.ErrTxnWrongType
	case t.store != d:
		return nil, errTxnOtherStore
	case t.finished:
		return nil, errTxnFinished
	}
	return t.tx, nil
}

// blobIterator wraps a badger iterator. An iterator created from an
// unusable transaction carries the error and yields nothing
type blobIterator struct {
	iter *badger.Iterator
	err  error
}

func (it *blobIterator) Seek(key []byte) {
	if it.iter != nil {
		it.iter.Seek(key)
	}
}

func (it *blobIterator) Valid() bool {
	return it.iter != nil && it.iter.Valid()
}

func (it *blobIterator) ValidForPrefix(prefix []byte) bool {
	return it.iter != nil && it.iter.ValidForPrefix(prefix)
}

func (it *blobIterator) Next() {
	if it.iter != nil {
		it.iter.Next()
	}
}

func (it *blobIterator) Item() types.BlobItem {
	if it.iter == nil {
		return nil
	}
	return blobItem{item: it.iter.Item()}
}

func (it *blobIterator) Close() {
	if it.iter != nil {
		it.iter.Close()
	}
}

func (it *blobIterator) Err() error {
	return it.err
}

type blobItem struct {
	item *badger.Item
}

func (i blobItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i blobItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
