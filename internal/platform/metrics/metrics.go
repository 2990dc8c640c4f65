package metrics

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Collector counts requests by outcome. Gateway failures surface as 502s on
// the console, so they get their own counter.
type Collector struct {
	totalRequests   uint64
	clientErrors    uint64
	errorRequests   uint64
	gatewayFailures uint64
	rateLimited     uint64
	totalDurationMs uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status == http.StatusTooManyRequests:
		atomic.AddUint64(&c.rateLimited, 1)
	case status == http.StatusBadGateway:
		atomic.AddUint64(&c.gatewayFailures, 1)
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"clientErrorsTotal":    atomic.LoadUint64(&c.clientErrors),
		"errorsTotal":          atomic.LoadUint64(&c.errorRequests),
		"gatewayFailuresTotal": atomic.LoadUint64(&c.gatewayFailures),
		"rateLimitedTotal":     atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
	}
}
