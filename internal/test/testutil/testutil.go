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

// Package testutil holds helpers for tests that wait on background
// goroutines such as the scheduler loop, the cycle timer and the API server
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pollInterval is how often WaitForCondition re-checks its condition
const pollInterval = 10 * time.Millisecond

// WaitForCondition fails the test unless condition becomes true within timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()
	require.Eventually(t, condition, timeout, pollInterval, msg)
}

// RequireReceive returns the next value from ch, failing the test after timeout
func RequireReceive[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v := <-ch:
		return v
	case <-timer.C:
	}
	t.Fatalf("nothing received within %s: %s", timeout, msg)
	var zero T
	return zero
}

// RequireNoReceive fails the test if ch yields a value within wait
func RequireNoReceive[T any](t *testing.T, ch <-chan T, wait time.Duration, msg string) {
	t.Helper()
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case v := <-ch:
		t.Fatalf("unexpected receive %v: %s", v, msg)
	case <-timer.C:
	}
}
