// Package security protects the HTTP surface itself. The per-client request
// limiter here is unrelated to the domain posting limits in the rules
// package: this one guards the service from abusive callers, that one
// guards sellers from the platform's spam heuristics.
package security

import (
	"sync"
	"time"

	"github.com/marketguard/listing-sentinel/internal/config"
	"golang.org/x/time/rate"
)

// ClientLimiter applies a per-client token bucket to incoming requests.
type ClientLimiter struct {
	cfg     config.ClientRateLimitConfig
	clients map[string]*clientEntry
	mu      sync.RWMutex
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter creates a new per-client request limiter.
func NewClientLimiter(cfg config.ClientRateLimitConfig) *ClientLimiter {
	return &ClientLimiter{
		cfg:     cfg,
		clients: make(map[string]*clientEntry),
	}
}

// Allow checks whether a request from the given client IP may proceed.
func (l *ClientLimiter) Allow(clientIP string) bool {
	if !l.cfg.Enabled {
		return true
	}

	return l.getEntry(clientIP).limiter.Allow()
}

// getEntry gets or creates the limiter entry for a client IP.
func (l *ClientLimiter) getEntry(clientIP string) *clientEntry {
	l.mu.RLock()
	entry, exists := l.clients[clientIP]
	l.mu.RUnlock()

	if exists {
		l.mu.Lock()
		entry.lastSeen = time.Now()
		l.mu.Unlock()
		return entry
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the write lock.
	if entry, exists := l.clients[clientIP]; exists {
		entry.lastSeen = time.Now()
		return entry
	}

	entry = &clientEntry{
		limiter:  rate.NewLimiter(rate.Limit(l.cfg.RequestsPerMin)/60, l.cfg.Burst),
		lastSeen: time.Now(),
	}
	l.clients[clientIP] = entry
	return entry
}

// CleanupStale removes entries idle for longer than maxIdle so the map does
// not grow without bound.
func (l *ClientLimiter) CleanupStale(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for ip, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine that periodically drops
// stale client entries.
func (l *ClientLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			l.CleanupStale(time.Hour)
		}
	}()
}
