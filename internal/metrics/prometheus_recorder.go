package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "livebuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   *prom.HistogramVec
	runOutcome    *prom.CounterVec
	artifactBytes prom.Gauge
}

// Buckets sized for compile times rather than request latencies.
var durationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline steps",
			Buckets:   durationBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Step results by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   durationBuckets,
		}, []string{"mode"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Pipeline runs by final outcome",
		}, []string{"mode", "outcome"}),
		artifactBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of the most recently deployed library",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome, pr.artifactBytes)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(mode string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(mode, outcome string) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(mode, outcome).Inc()
}

func (p *PrometheusRecorder) SetLastArtifactBytes(n int64) {
	if p == nil {
		return
	}
	p.artifactBytes.Set(float64(n))
}

// WriteTextfile writes everything gathered by g to path in the Prometheus
// text exposition format, atomically replacing any previous file.
func WriteTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}
