package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fraudscope"

// Recorder keeps the latest evaluation of every model in a private
// Prometheus registry so a run can be exported as a textfile.
type Recorder struct {
	registry    *prometheus.Registry
	scores      *prometheus.GaugeVec
	confusion   *prometheus.GaugeVec
	fitDuration *prometheus.GaugeVec
	samples     *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scores: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "model_score",
				Help:      "Evaluation score of a model on the test split",
			},
			[]string{"model", "metric"},
		),
		confusion: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "confusion",
				Help:      "Confusion matrix cell counts on the test split",
			},
			[]string{"model", "actual", "predicted"},
		),
		fitDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "fit_duration_seconds",
				Help:      "Wall time spent fitting a model",
			},
			[]string{"model"},
		),
		samples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "samples",
				Help:      "Rows per class at each stage of the run",
			},
			[]string{"stage", "class"},
		),
	}
	r.registry.MustRegister(r.scores, r.confusion, r.fitDuration, r.samples)
	return r
}

// Observe records a model's report and fit time.
func (r *Recorder) Observe(modelName string, rep Report, fit time.Duration) {
	r.scores.WithLabelValues(modelName, "accuracy").Set(rep.Accuracy)
	r.scores.WithLabelValues(modelName, "precision").Set(rep.Precision)
	r.scores.WithLabelValues(modelName, "recall").Set(rep.Recall)
	r.scores.WithLabelValues(modelName, "f1").Set(rep.F1)
	for a := 0; a < 2; a++ {
		for p := 0; p < 2; p++ {
			r.confusion.WithLabelValues(modelName, strconv.Itoa(a), strconv.Itoa(p)).Set(float64(rep.Confusion[a][p]))
		}
	}
	r.fitDuration.WithLabelValues(modelName).Set(fit.Seconds())
}

// ObserveCounts records class counts for a named stage such as "raw" or "resampled".
func (r *Recorder) ObserveCounts(stage string, counts map[int]int) {
	for class, n := range counts {
		r.samples.WithLabelValues(stage, strconv.Itoa(class)).Set(float64(n))
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
