package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	authpkg "dailyart/shared/pkg/auth"
)

// requestRecord tracks the number of requests and the window start time
type requestRecord struct {
	count       int
	windowStart time.Time
}

// Throttle is a fixed-window rate limiter keyed by user id, or by remote
// address for anonymous requests.
type Throttle struct {
	maxRequests int
	period      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	records map[string]*requestRecord
}

func NewThrottle(maxRequests int, period time.Duration) *Throttle {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	return &Throttle{
		maxRequests: maxRequests,
		period:      period,
		now:         time.Now,
		records:     make(map[string]*requestRecord),
	}
}

// Allow checks if key can make a request and counts it.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	record, ok := t.records[key]
	if !ok || now.Sub(record.windowStart) >= t.period {
		t.records[key] = &requestRecord{count: 1, windowStart: now}
		return true
	}
	if record.count >= t.maxRequests {
		return false
	}
	record.count++
	return true
}

// Cleanup drops records whose window ended before cutoff.
func (t *Throttle) Cleanup(cutoff time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, record := range t.records {
		if record.windowStart.Add(t.period).Before(cutoff) {
			delete(t.records, key)
		}
	}
}

// Run removes stale records every interval until done is closed.
func (t *Throttle) Run(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.Cleanup(t.now())
		}
	}
}

func throttleKey(r *http.Request) string {
	if userCtx, err := authpkg.GetUserFromContext(r.Context()); err == nil {
		return "user:" + strconv.FormatUint(userCtx.UserID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware rejects requests over the limit with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Allow(throttleKey(r)) {
			w.Header().Set("Retry-After", formatRetryAfter(t.period))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// formatRetryAfter formats the period as seconds for Retry-After header
func formatRetryAfter(period time.Duration) string {
	seconds := int(period.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
