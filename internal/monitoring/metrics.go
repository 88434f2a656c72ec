package monitoring

import (
	"net/http"
	"time"

	"github.com/banshee-data/trackseed/internal/seeding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the seeding metrics. It implements seeding.Metrics and is
// safe for concurrent use by several producers.
type Registry struct {
	TracksTotal      prometheus.Counter
	StagePassedTotal *prometheus.CounterVec
	SeedsTotal       *prometheus.CounterVec
	EventsTotal      prometheus.Counter
	SeedsPerEvent    prometheus.Histogram
	RunDuration      prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a Registry backed by its own prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initSeedingMetrics()
	return r
}

func (r *Registry) initSeedingMetrics() {
	r.TracksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "trackseed_tracks_total",
			Help: "Simulated tracks with hits seen by the producers",
		},
	)

	r.StagePassedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackseed_stage_passed_total",
			Help: "Tracks passing each seeding cut, per algorithm",
		},
		[]string{"algorithm", "stage"},
	)

	r.SeedsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackseed_seeds_total",
			Help: "Trajectory seeds built, per algorithm",
		},
		[]string{"algorithm"},
	)

	r.EventsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "trackseed_events_total",
			Help: "Events seeded and stored",
		},
	)

	r.SeedsPerEvent = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trackseed_seeds_per_event",
			Help:    "Number of seeds built per event",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
	)

	r.RunDuration = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "trackseed_run_duration_seconds",
			Help: "Wall time of the last completed run",
		},
	)
}

// TrackSeen implements seeding.Metrics.
func (r *Registry) TrackSeen() { r.TracksTotal.Inc() }

// StagePassed implements seeding.Metrics.
func (r *Registry) StagePassed(algorithm string, stage seeding.Stage) {
	r.StagePassedTotal.WithLabelValues(algorithm, stage.String()).Inc()
}

// SeedBuilt implements seeding.Metrics.
func (r *Registry) SeedBuilt(algorithm string) { r.SeedsTotal.WithLabelValues(algorithm).Inc() }

// RecordEvent records one stored event.
func (r *Registry) RecordEvent(out *seeding.Output) {
	r.EventsTotal.Inc()
	r.SeedsPerEvent.Observe(float64(out.Len()))
}

// RecordRun records the wall time of a finished run.
func (r *Registry) RecordRun(d time.Duration) { r.RunDuration.Set(d.Seconds()) }

// Handler serves the registry in the prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
