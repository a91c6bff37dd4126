package middleware

import (
	"sync"
	"time"
)

const sweepThreshold = 1024

type clientInfo struct {
	start  time.Time
	window time.Duration
	count  int64
}

func (ci *clientInfo) expired(now time.Time) bool {
	return now.Sub(ci.start) > ci.window
}

// memoryLimiter counts requests per key in fixed windows inside one process.
type memoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

func (m *memoryLimiter) incr(key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	ci, ok := m.clients[key]
	if !ok || now.Sub(ci.start) > window {
		m.sweep(now)
		m.clients[key] = &clientInfo{start: now, window: window, count: 1}
		return 1
	}

	ci.count++
	return ci.count
}

// sweep drops expired windows so the map does not grow with every client IP.
// Each entry expires by the window of the limit that created it.
func (m *memoryLimiter) sweep(now time.Time) {
	if len(m.clients) < sweepThreshold {
		return
	}
	for k, ci := range m.clients {
		if ci.expired(now) {
			delete(m.clients, k)
		}
	}
}
