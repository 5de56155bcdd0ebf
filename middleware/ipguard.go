package middleware

import (
	"sync"
	"time"
)

// IPGuard enforces a concurrent-per-IP cap and rapid-connect tracking
// ahead of the /ws upgrade.
type IPGuard struct {
	mu               sync.Mutex
	maxPerIP         int
	rapidWindow      time.Duration
	rapidLimit       int
	concurrent       map[string]int
	recentAttempts   map[string][]time.Time
	suspicious       map[string]bool
}

func NewIPGuard(maxConnectionsPerIP int) *IPGuard {
	return &IPGuard{
		maxPerIP:       maxConnectionsPerIP,
		rapidWindow:    60 * time.Second,
		rapidLimit:     3,
		concurrent:     make(map[string]int),
		recentAttempts: make(map[string][]time.Time),
		suspicious:     make(map[string]bool),
	}
}

// Allow evaluates the upgrade policy for ip, marking it suspicious if
// this attempt is the one that crosses the rapid-connect threshold.
func (g *IPGuard) Allow(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.suspicious[ip] {
		return false
	}
	if g.concurrent[ip] >= g.maxPerIP {
		return false
	}

	now := time.Now()
	cutoff := now.Add(-g.rapidWindow)
	attempts := g.recentAttempts[ip]
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	g.recentAttempts[ip] = kept

	if len(kept) > g.rapidLimit {
		g.suspicious[ip] = true
		return false
	}

	return true
}

// Connected records a successful upgrade's concurrency slot.
func (g *IPGuard) Connected(ip string) {
	g.mu.Lock()
	g.concurrent[ip]++
	g.mu.Unlock()
}

// Disconnected releases ip's concurrency slot.
func (g *IPGuard) Disconnected(ip string) {
	g.mu.Lock()
	if g.concurrent[ip] > 0 {
		g.concurrent[ip]--
	}
	g.mu.Unlock()
}
