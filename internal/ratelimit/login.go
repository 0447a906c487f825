package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/config"
)

// LoginLimiter caps login attempts per account over a fixed window. It
// is in-process on purpose: abuse protection on the login form has to
// keep working when redis is down or not configured.
type LoginLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clk     clock.Clock
	windows map[string]*loginWindow
}

type loginWindow struct {
	start time.Time
	count int
}

func NewLoginLimiter(cfg config.Config, clk clock.Clock) *LoginLimiter {
	limit := cfg.LoginAttemptLimit
	if limit <= 0 {
		limit = 10
	}
	windowSec := cfg.LoginAttemptWindowSec
	if windowSec <= 0 {
		windowSec = 60
	}
	return &LoginLimiter{
		limit:   limit,
		window:  time.Duration(windowSec) * time.Second,
		clk:     clk,
		windows: make(map[string]*loginWindow),
	}
}

// Allow records one attempt against the key and reports whether it is
// within the window limit.
func (l *LoginLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return true
	}
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = &loginWindow{start: now, count: 1}
		l.evictExpired(now)
		return true
	}

	w.count++
	return w.count <= l.limit
}

// evictExpired runs under the lock and keeps the map from growing with
// one entry per email ever attempted.
func (l *LoginLimiter) evictExpired(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
