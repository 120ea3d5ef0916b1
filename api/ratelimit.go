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
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// ipKey extracts a rate-limit key from a client IP. IPv4 addresses use the
// bare address. IPv6 addresses use the /64 prefix so a client rotating
// within a single /64 subnet is limited as one source. Unparseable values
// return an empty string and are exempt
func ipKey(clientIP string) string {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return ""
	}
	// IPv4 or IPv4-mapped IPv6: use the full address as the key
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	mask := net.CIDRMask(64, 128)
	return ip.Mask(mask).String() + "/64"
}

// ipLimiter bounds the number of in-flight requests per client IP
type ipLimiter struct {
	max   int
	mu    sync.Mutex
	conns map[string]int
}

func newIPLimiter(maxPerIP int) *ipLimiter {
	return &ipLimiter{
		max:   maxPerIP,
		conns: make(map[string]int),
	}
}

// acquire reserves a request slot for key. It returns false when the
// per-IP limit has been reached
func (l *ipLimiter) acquire(key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conns[key] >= l.max {
		return false
	}
	l.conns[key]++
	return true
}

func (l *ipLimiter) release(key string) {
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conns[key]--
	if l.conns[key] <= 0 {
		delete(l.conns, key)
	}
}

func (l *ipLimiter) count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conns[key]
}

// middleware rejects requests beyond the per-IP limit with 429
func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ipKey(c.ClientIP())
		if !l.acquire(key) {
			abortError(c, http.StatusTooManyRequests, "too many concurrent requests")
			return
		}
		defer l.release(key)
		c.Next()
	}
}
