package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for the planner. A nil *Metrics is a
// valid no-op collector.
type Metrics struct {
	analysesTotal    prometheus.Counter
	analysisDuration prometheus.Histogram
	rowsPlanned      prometheus.Counter
	actionsPlanned   *prometheus.CounterVec
}

// NewMetrics creates a metrics collector and registers it on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		analysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adplan",
			Name:      "analyses_total",
			Help:      "Total number of completed analyses",
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adplan",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analysis runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		rowsPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adplan",
			Name:      "rows_planned_total",
			Help:      "Total number of input rows planned",
		}),
		actionsPlanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adplan",
			Name:      "actions_planned_total",
			Help:      "Total number of planned actions by kind",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		m.analysesTotal, m.analysisDuration, m.rowsPlanned, m.actionsPlanned,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveAnalysis records a completed analysis.
func (m *Metrics) ObserveAnalysis(rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analysesTotal.Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
	m.rowsPlanned.Add(float64(rows))
}

// CountAction records one planned action of the given kind.
func (m *Metrics) CountAction(kind string) {
	if m == nil {
		return
	}
	m.actionsPlanned.WithLabelValues(kind).Inc()
}
