package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hrconsole/internal/platform/metrics"
	"hrconsole/internal/requestctx"
)

type logEntry struct {
	Timestamp string `json:"ts"`
	Service   string `json:"service"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Bytes     int    `json:"bytes"`
	Duration  int64  `json:"durationMs"`
	RequestID string `json:"requestId"`
	SessionID string `json:"sessionId,omitempty"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger writes one JSON line per request, tagged with the service name, and
// feeds the collector when one is given.
func Logger(service string, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			elapsed := time.Since(start)
			if collector != nil {
				collector.Record(recorder.status, elapsed)
			}

			entry := logEntry{
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Service:   service,
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    recorder.status,
				Bytes:     recorder.bytes,
				Duration:  elapsed.Milliseconds(),
				RequestID: GetRequestID(r.Context()),
				SessionID: requestctx.GetSessionID(r.Context()),
			}

			payload, _ := json.Marshal(entry)
			log.Println(string(payload))
		})
	}
}
