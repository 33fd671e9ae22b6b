package cp

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Stats holds the propagation counters of a Store. They are always
// maintained and are cheap to read through Store.Stats.
type Stats struct {
	Posts          int64 // constraints posted, including delegated posts
	L1Events       int64 // fine-grained hook calls
	L2Propagations int64 // Propagate calls from the coarse queue
	Failures       int64 // failed Setup or hook calls
	Passes         int64 // fixpoint passes started
	PeakTrailSize  int   // largest number of trail entries held at once
}

// Metrics exports propagation activity to Prometheus. Pass the result of
// NewMetrics in Config.Metrics; several stores may share one Metrics.
type Metrics struct {
	PropagatorCalls *prometheus.CounterVec
	Failures        prometheus.Counter
	FixpointPasses  prometheus.Counter
	TrailSizePeak   prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PropagatorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gokanprop_propagator_calls_total",
			Help: "Constraint hook invocations, by constraint and hook.",
		}, []string{"constraint", "hook"}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gokanprop_failures_total",
			Help: "Propagation failures (domain wipe-outs).",
		}),
		FixpointPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gokanprop_fixpoint_passes_total",
			Help: "Fixpoint passes started.",
		}),
		TrailSizePeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gokanprop_trail_size_peak",
			Help: "Largest trail size observed by the last store to finish a pass.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.PropagatorCalls, m.Failures, m.FixpointPasses, m.TrailSizePeak} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering engine metrics")
		}
	}
	return m, nil
}
