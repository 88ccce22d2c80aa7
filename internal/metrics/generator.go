package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation Prometheus metrics.
var (
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phonegen",
			Name:      "generations_total",
			Help:      "Total number of generation requests by outcome",
		},
		[]string{"status"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "phonegen",
			Name:      "generation_duration_seconds",
			Help:      "Generation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	NumbersGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phonegen",
			Name:      "numbers_generated_total",
			Help:      "Total phone numbers written to artifacts",
		},
	)

	ArtifactFilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phonegen",
			Name:      "artifact_files_total",
			Help:      "Total artifact files written",
		},
	)

	ArtifactBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phonegen",
			Name:      "artifact_bytes_total",
			Help:      "Total artifact bytes written",
		},
	)

	ArtifactsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phonegen",
			Name:      "artifacts_swept_total",
			Help:      "Total expired artifact files removed",
		},
	)
)

var genMetricsRegistered bool

// RegisterGeneratorMetrics registers generation metrics. Must be called once from main.
func RegisterGeneratorMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationsTotal)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(NumbersGeneratedTotal)
	prometheus.MustRegister(ArtifactFilesTotal)
	prometheus.MustRegister(ArtifactBytesTotal)
	prometheus.MustRegister(ArtifactsSweptTotal)
	genMetricsRegistered = true
}
