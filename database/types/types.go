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

import "errors"

var (
	// ErrBlobKeyNotFound is returned when a blob key is missing
	ErrBlobKeyNotFound = errors.New("blob key not found")
	// ErrBlobStoreUnavailable is returned when a transaction has no blob side
	ErrBlobStoreUnavailable = errors.New("blob store unavailable")
	ErrNoStoreAvailable     = errors.New("no store available")
	ErrNilTxn               = errors.New("nil transaction")
	ErrTxnWrongType         = errors.New("invalid transaction type")
)

// Txn is the commit/rollback handle a store hands out. The database package
// coordinates the metadata and blob handles of one logical transaction
type Txn interface {
	Commit() error
	Rollback() error
}

// BlobItem is a key/value pair read through a BlobIterator
type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator walks blob keys in ascending order. Items must be read
// before the owning transaction is finished
type BlobIterator interface {
	Seek(key []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

// BlobIteratorOptions limits an iterator to keys under Prefix
type BlobIteratorOptions struct {
	Prefix []byte
}
