package reconciler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"resource-dispatcher/internal/api"
)

var (
	syncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_dispatcher_sync_total",
			Help: "Total number of sync requests by outcome.",
		},
		[]string{"outcome"},
	)

	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resource_dispatcher_sync_duration_seconds",
			Help:    "Latency of sync request evaluation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	desiredChildren = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resource_dispatcher_desired_children",
			Help: "Desired number of children per tracked kind, as last counted from the manifest folder.",
		},
		[]string{"kind"},
	)

	manifestsValid = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "resource_dispatcher_manifests_valid",
			Help: "1 when the manifest folder generated cleanly at the last check, 0 otherwise.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		syncTotal,
		syncDuration,
		desiredChildren,
		manifestsValid,
	)
}

// Collectors returns the collectors registered by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		syncTotal,
		syncDuration,
		desiredChildren,
		manifestsValid,
	}
}

func recordSync(outcome Outcome, elapsed time.Duration) {
	syncTotal.WithLabelValues(string(outcome)).Inc()
	syncDuration.Observe(elapsed.Seconds())
}

func recordDesired(desired map[api.KindID]int) {
	for kind, count := range desired {
		desiredChildren.WithLabelValues(kind.String()).Set(float64(count))
	}
}

// RecordManifestsValid sets the manifest validity gauge.
func RecordManifestsValid(valid bool) {
	if valid {
		manifestsValid.Set(1)
		return
	}
	manifestsValid.Set(0)
}
