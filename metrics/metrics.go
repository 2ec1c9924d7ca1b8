package metrics

import (
	"strings"
	"time"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects engine run metrics on a private registry. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocvar",
			Name:      "runs_total",
			Help:      "Engine computations by operation, model and outcome.",
		}, []string{"operation", "model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stocvar",
			Name:      "run_seconds",
			Help:      "Wall time of engine computations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"operation"}),
	}
	r.registry.MustRegister(r.runs, r.duration)
	return r
}

// Outcome is "ok" for a nil error, otherwise the error kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k, ok := models.KindOf(err); ok {
		return strings.ReplaceAll(k.String(), " ", "_")
	}
	return "error"
}

// Observe records one finished computation.
func (r *Recorder) Observe(operation, model string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(operation, model, Outcome(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// for pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
