package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"learn.throttlegate/types"
)

const namespace = "throttlegate"

// Collector owns the Prometheus series shared by all gates.
type Collector struct {
	reg            prometheus.Registerer
	evaluations    *prometheus.CounterVec
	actionFailures *prometheus.CounterVec
}

// NewCollector creates the gate series and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reg: reg,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Gate evaluations by outcome.",
		}, []string{"gate", "outcome"}),
		actionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_failures_total",
			Help:      "Permitted runs whose action returned an error.",
		}, []string{"gate"}),
	}
	reg.MustRegister(c.evaluations, c.actionFailures)
	return c
}

// WatchGate exports the gate's permitted-run count as a gauge.
// It fails if a gate with the same label is already watched.
func (c *Collector) WatchGate(label string, gate types.Gate) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "total_calls",
		Help:        "Permitted runs since the gate was created.",
		ConstLabels: prometheus.Labels{"gate": label},
	}, func() float64 {
		return float64(gate.TotalCalls())
	})
	if err := c.reg.Register(gauge); err != nil {
		return fmt.Errorf("watch gate '%s': %w", label, err)
	}
	return nil
}

// ForGate returns the metrics recorder for one gate.
func (c *Collector) ForGate(label string) *GateMetrics {
	return &GateMetrics{
		permitted: c.evaluations.WithLabelValues(label, "permitted"),
		rejected:  c.evaluations.WithLabelValues(label, "rejected"),
		failures:  c.actionFailures.WithLabelValues(label),
	}
}

// GateMetrics records evaluation outcomes for one gate, both as in-process
// counters and as Prometheus series.
type GateMetrics struct {
	TotalEvaluations int32
	Permitted        int32
	Rejected         int32
	ActionFailures   int32

	permitted prometheus.Counter
	rejected  prometheus.Counter
	failures  prometheus.Counter
}

// NewGateMetrics returns a recorder with in-process counters only.
func NewGateMetrics() *GateMetrics {
	return &GateMetrics{}
}

func (m *GateMetrics) RecordEvaluation(permitted bool) {
	atomic.AddInt32(&m.TotalEvaluations, 1)
	if permitted {
		atomic.AddInt32(&m.Permitted, 1)
		if m.permitted != nil {
			m.permitted.Inc()
		}
	} else {
		atomic.AddInt32(&m.Rejected, 1)
		if m.rejected != nil {
			m.rejected.Inc()
		}
	}
}

func (m *GateMetrics) RecordActionFailure() {
	atomic.AddInt32(&m.ActionFailures, 1)
	if m.failures != nil {
		m.failures.Inc()
	}
}
