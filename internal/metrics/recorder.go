// Package metrics counts workflow outcomes in a private Prometheus registry
// and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "invite_agent"

// Recorder implements workflow.Observer.
type Recorder struct {
	registry *prometheus.Registry
	profiles *prometheus.CounterVec
	duration *prometheus.GaugeVec
	lastRun  prometheus.Gauge
}

// NewRecorder registers the workflow collectors. account is attached as a
// constant label so textfiles from several accounts can coexist.
func NewRecorder(account string) *Recorder {
	constLabels := prometheus.Labels{"account": account}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "profiles_total",
			Help:        "Profiles handled, by workflow phase and result.",
			ConstLabels: constLabels,
		}, []string{"phase", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall-clock duration of the last run of each phase.",
			ConstLabels: constLabels,
		}, []string{"phase"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last phase finished.",
			ConstLabels: constLabels,
		}),
	}
	r.registry.MustRegister(r.profiles, r.duration, r.lastRun)
	return r
}

// Observe counts one handled profile.
func (r *Recorder) Observe(phase, result string) {
	r.profiles.WithLabelValues(phase, result).Inc()
}

// PhaseFinished records a phase duration and completion time.
func (r *Recorder) PhaseFinished(phase string, d time.Duration, at time.Time) {
	r.duration.WithLabelValues(phase).Set(d.Seconds())
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
