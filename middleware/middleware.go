package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"learn.throttlegate/metrics"
	"learn.throttlegate/types"
)

// ThrottleMiddleware lets a handler run at most once per gate interval.
type ThrottleMiddleware struct {
	gate    types.Gate
	metrics *metrics.GateMetrics
	label   string
}

// NewThrottleMiddleware creates a new ThrottleMiddleware. The gate must be safe
// for concurrent use, e.g. a core.SyncGate.
func NewThrottleMiddleware(gate types.Gate, metrics *metrics.GateMetrics, label string) *ThrottleMiddleware {
	return &ThrottleMiddleware{
		gate:    gate,
		metrics: metrics,
		label:   label,
	}
}

// Handle wraps an http.HandlerFunc with the gate.
func (m *ThrottleMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return m.HandleErr(func(w http.ResponseWriter, r *http.Request) error {
		next.ServeHTTP(w, r)
		return nil
	})
}

// HandleErr wraps a handler that may fail. A failed handler answers 500 and
// still counts as a run of the gate.
func (m *ThrottleMiddleware) HandleErr(next func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ran, err := m.gate.RunIfPermitted(func() error {
			return next(w, r)
		})
		m.metrics.RecordEvaluation(ran)

		if !ran {
			wait := m.gate.WaitTime()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			w.WriteHeader(http.StatusTooManyRequests)
			log.Debug().Str("gate", m.label).Str("path", r.URL.Path).Dur("wait", wait).Msg("Middleware: Request throttled")
			return
		}
		if err != nil {
			m.metrics.RecordActionFailure()
			log.Error().Err(err).Str("gate", m.label).Str("path", r.URL.Path).Msg("Middleware: Handler failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// retryAfterSeconds rounds wait up to whole seconds, minimum 1.
func retryAfterSeconds(wait time.Duration) int {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
