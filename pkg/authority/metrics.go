package authority

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opAdd     = "add"
	opDelete  = "delete"
	opUpdate  = "update"
	opWitness = "witness"
)

type metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.SummaryVec
	epoch    prometheus.Gauge
}

// newMetrics creates the collectors of one authority, labelled with its name,
// and registers them if reg is not nil.
func newMetrics(name string, reg prometheus.Registerer) (*metrics, error) {
	labels := prometheus.Labels{"authority": name}
	m := &metrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "allosaur",
				Subsystem:   "authority",
				Name:        "operations_total",
				Help:        "Incremented for each operation, labeled by operation and success or failure.",
				ConstLabels: labels,
			},
			[]string{"op", "success"},
		),
		duration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:   "allosaur",
				Subsystem:   "authority",
				Name:        "operation_duration_seconds",
				Help:        "Summary of how long an operation takes to complete.",
				ConstLabels: labels,
			},
			[]string{"op"},
		),
		epoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "allosaur",
				Subsystem:   "authority",
				Name:        "epoch",
				Help:        "Current epoch of the accumulator.",
				ConstLabels: labels,
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.ops, m.duration, m.epoch} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe is deferred by every operation, with a pointer to its named error.
func (m *metrics) observe(op string, start time.Time, err *error) {
	success := "true"
	if *err != nil {
		success = "false"
	}
	m.ops.WithLabelValues(op, success).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
