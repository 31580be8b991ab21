package orchestrator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Yates-Labs/compujudge/internal/tribunal"
)

// Metrics exposes Prometheus collectors for grading activity. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	agentOutcomes *prometheus.CounterVec
	attempts      prometheus.Histogram
	reviews       *prometheus.CounterVec
	vetoes        prometheus.Counter
	cores         *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns metrics registered with the global registry,
// created once per process.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the grading collectors with reg and panics on a
// registration conflict. Tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compujudge",
			Subsystem: "grading",
			Name:      "runs_total",
			Help:      "Grading runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compujudge",
			Subsystem: "grading",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a grading run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"mode"}),
		agentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compujudge",
			Subsystem: "tribunal",
			Name:      "agent_reports_total",
			Help:      "Agent reports by agent and outcome.",
		}, []string{"agent", "outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "compujudge",
			Subsystem: "tribunal",
			Name:      "attempts",
			Help:      "Tribunal attempts needed per run.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compujudge",
			Subsystem: "tribunal",
			Name:      "reviews_total",
			Help:      "Grade analyst verdicts.",
		}, []string{"verdict"}),
		vetoes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compujudge",
			Subsystem: "tribunal",
			Name:      "logic_vetoes_total",
			Help:      "Verdicts slashed by the logic veto.",
		}),
		cores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compujudge",
			Subsystem: "legacy",
			Name:      "core_passes_total",
			Help:      "Legacy forensic passes by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.runs, m.runDuration, m.agentOutcomes, m.attempts, m.reviews, m.vetoes, m.cores)
	return m
}

func (m *Metrics) observeRun(mode, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(mode, outcome).Inc()
	m.runDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observePanel(panel tribunal.Panel) {
	if m == nil {
		return
	}
	for _, kind := range tribunal.Kinds {
		outcome := "ok"
		if panel.Get(kind).Failed() {
			outcome = "failed"
		}
		m.agentOutcomes.WithLabelValues(string(kind), outcome).Inc()
	}
}

func (m *Metrics) observeAttempts(n int) {
	if m == nil {
		return
	}
	m.attempts.Observe(float64(n))
}

func (m *Metrics) observeReview(review tribunal.Review) {
	if m == nil {
		return
	}
	verdict := tribunal.VerdictFail
	if review.Passed() {
		verdict = tribunal.VerdictPass
	}
	m.reviews.WithLabelValues(verdict).Inc()
}

func (m *Metrics) observeVeto() {
	if m == nil {
		return
	}
	m.vetoes.Inc()
}

func (m *Metrics) observeCores(ok, failed int) {
	if m == nil {
		return
	}
	m.cores.WithLabelValues("ok").Add(float64(ok))
	m.cores.WithLabelValues("failed").Add(float64(failed))
}
