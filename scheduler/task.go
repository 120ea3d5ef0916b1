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

package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrDuplicateTask is returned when a task with the same ID is already queued
var ErrDuplicateTask = errors.New("duplicate task")

// taskNamespace seeds the deterministic task IDs
var taskNamespace = uuid.MustParse("5c1a4a7e-9f7b-4c43-8d0e-6b8f0e6f9a21")

// Task is a single unit of queued work. Kind selects the handler, Key names
// the logical job and Cursor records where a sweep resumes
type Task struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Key       string          `json:"key,omitempty"`
	Cursor    string          `json:"cursor,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	NotBefore int64           `json:"notBefore,omitempty"`
}

// NewTask builds a task for the given kind, key and cursor. The payload is
// JSON encoded
func NewTask(kind, key, cursor string, payload any) (Task, error) {
	t := Task{
		Kind:   kind,
		Key:    key,
		Cursor: cursor,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return t, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		t.Payload = data
	}
	t.ID = TaskID(kind, key, cursor)
	return t, nil
}

// TaskID returns the deterministic ID for a kind, key and cursor. Two tasks
// for the same job and resume point share an ID
func TaskID(kind, key, cursor string) string {
	return uuid.NewSHA1(
		taskNamespace,
		[]byte(strings.Join([]string{kind, key, cursor}, "/")),
	).String()
}

// Decode unmarshals the task payload into dest
func (t Task) Decode(dest any) error {
	if len(t.Payload) == 0 {
		return fmt.Errorf("%s task %s has no payload", t.Kind, t.ID)
	}
	return json.Unmarshal(t.Payload, dest)
}

// Next returns the continuation of a sweep task at a new cursor, carrying
// the same kind, key and payload
func (t Task) Next(cursor string) Task {
	return Task{
		ID:      TaskID(t.Kind, t.Key, cursor),
		Kind:    t.Kind,
		Key:     t.Key,
		Cursor:  cursor,
		Payload: t.Payload,
	}
}

func encodeTask(t Task) ([]byte, error) {
	return json.Marshal(t)
}

func decodeTask(data []byte) (Task, error) {
	var t Task
	err := json.Unmarshal(data, &t)
	return t, err
}
