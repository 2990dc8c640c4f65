package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrconsole/internal/transport/http/api"
)

// maxTrackedKeys bounds the bucket map; expired buckets are pruned past it.
const maxTrackedKeys = 4096

type keyFunc func(r *http.Request) string

type bucket struct {
	hits    int
	resetAt time.Time
}

// limiter counts hits per key in fixed windows.
type limiter struct {
	name   string
	limit  int
	window time.Duration
	key    keyFunc
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(name string, limit int, window time.Duration, key keyFunc, now func() time.Time) *limiter {
	return &limiter{
		name:    name,
		limit:   max(limit, 1),
		window:  window,
		key:     key,
		now:     now,
		buckets: map[string]*bucket{},
	}
}

// take records one hit and reports whether it is within the limit, the hits
// left and the time until the window resets.
func (l *limiter) take(key string) (bool, int, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) > maxTrackedKeys {
		for k, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, k)
			}
		}
	}
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.hits++
	return b.hits <= l.limit, max(l.limit-b.hits, 0), b.resetAt.Sub(now)
}

// admit applies the limiter to r and writes the 429 itself when over.
func (l *limiter) admit(w http.ResponseWriter, r *http.Request) bool {
	key := l.key(r)
	if key == "" {
		key = clientIP(r)
	}
	ok, remaining, resetIn := l.take(key)
	resetSec := ceilSeconds(resetIn)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if ok {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "limiter", l.name, "key", key, "method", r.Method, "path", r.URL.Path)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

type rateScope int

const (
	scopeNone rateScope = iota
	scopeLogin
	scopeMutation
)

// scopeOf classifies the routes worth throttling: the login steps on both
// servers, and the actions that write to the gateway.
func scopeOf(r *http.Request) rateScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return scopeNone
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch path {
	case "/auth/username", "/auth/password", "/login":
		return scopeLogin
	case "/leaves/submit", "/leave/approve":
		return scopeMutation
	}
	if strings.HasPrefix(path, "/masterdata/") &&
		(strings.HasSuffix(path, "/form/submit") || strings.HasSuffix(path, "/delete/confirm")) {
		return scopeMutation
	}
	if r.Method == http.MethodDelete || strings.HasSuffix(path, "/save") || strings.HasSuffix(path, "/update") {
		return scopeMutation
	}
	return scopeNone
}

type sensitiveLimits struct {
	loginByIP   *limiter
	loginByName *limiter
	mutations   *limiter
}

func newSensitiveLimits(baseLimit int, window time.Duration, now func() time.Time) *sensitiveLimits {
	return &sensitiveLimits{
		loginByIP:   newLimiter("login-ip", baseLimit/4, window, clientIP, now),
		loginByName: newLimiter("login-username", baseLimit/4, window, usernameKey, now),
		mutations:   newLimiter("mutation", baseLimit/2, window, actorKey, now),
	}
}

func (s *sensitiveLimits) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch scopeOf(r) {
		case scopeLogin:
			if !s.loginByIP.admit(w, r) || !s.loginByName.admit(w, r) {
				return
			}
		case scopeMutation:
			if !s.mutations.admit(w, r) {
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SensitiveMutationRateLimit throttles login steps per client IP and per
// username at a quarter of baseLimit, and gateway writes per session at half
// of it. Reads are never throttled.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	if baseLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return newSensitiveLimits(baseLimit, window, time.Now).handler
}

// usernameKey keys login attempts by the username in the JSON body, so one
// account cannot be guessed at from many addresses.
func usernameKey(r *http.Request) string {
	if name := strings.ToLower(bodyField(r, "username")); name != "" {
		return "username:" + name
	}
	return clientIP(r)
}

func actorKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok {
		if user.SessionID != "" {
			return "session:" + user.SessionID
		}
		if user.Username != "" {
			return "user:" + strings.ToLower(user.Username)
		}
	}
	return clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// bodyField peeks at a string field of a JSON body and puts the body back
// for the handler.
func bodyField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}
