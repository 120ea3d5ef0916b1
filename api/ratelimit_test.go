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

package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPKey(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.0.2.10", "192.0.2.10"},
		{"::ffff:192.0.2.10", "192.0.2.10"},
		{"2001:db8:1:2:3:4:5:6", "2001:db8:1:2::/64"},
		{"2001:db8:1:2:ffff::1", "2001:db8:1:2::/64"},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ipKey(tc.ip), tc.ip)
	}
}

func TestIPLimiterAcquireRelease(t *testing.T) {
	l := newIPLimiter(2)
	assert.True(t, l.acquire("a"))
	assert.True(t, l.acquire("a"))
	assert.False(t, l.acquire("a"))
	assert.True(t, l.acquire("b"))
	// Exempt keys are never limited
	for range 5 {
		assert.True(t, l.acquire(""))
	}
	l.release("a")
	assert.Equal(t, 1, l.count("a"))
	assert.True(t, l.acquire("a"))
	l.release("a")
	l.release("a")
	assert.Zero(t, l.count("a"))
	l.mu.Lock()
	_, ok := l.conns["a"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestIPLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	l := newIPLimiter(1)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	router := gin.New()
	router.Use(l.middleware())
	router.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-unblock
		c.Status(http.StatusOK)
	})
	router.GET("/fast", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	slow := httptest.NewRecorder()
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodGet, "/slow", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(slow, req)
	}()
	<-entered

	req := httptest.NewRequest(http.MethodGet, "/fast", nil)
	req.RemoteAddr = "192.0.2.1:5678"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other clients are unaffected
	req = httptest.NewRequest(http.MethodGet, "/fast", nil)
	req.RemoteAddr = "192.0.2.2:5678"
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	close(unblock)
	wg.Wait()
	require.Equal(t, http.StatusOK, slow.Code)
	assert.Zero(t, l.count("192.0.2.1"))
}
