package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
)

// Metrics collects per-run figures in a private registry so they can be
// dumped as a node_exporter textfile after the run.
type Metrics struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	audioSeconds     prometheus.Gauge
	processSeconds   prometheus.Gauge
	speedRatio       prometheus.Gauge
	segments         prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// NewMetrics registers the transcription metrics in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transcribe",
			Name:      "runs_total",
			Help:      "Transcription runs by engine, model and outcome.",
		}, []string{"engine", "model", "outcome"}),
		audioSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transcribe",
			Name:      "audio_duration_seconds",
			Help:      "Duration of the last transcribed audio.",
		}),
		processSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transcribe",
			Name:      "processing_duration_seconds",
			Help:      "Wall-clock time spent decoding and recognizing the last input.",
		}),
		speedRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transcribe",
			Name:      "speed_ratio",
			Help:      "Audio duration divided by processing time for the last run.",
		}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transcribe",
			Name:      "segments",
			Help:      "Segments produced by the recognizer in the last run.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transcribe",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.runs, m.audioSeconds, m.processSeconds, m.speedRatio, m.segments, m.lastRunTimestamp)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSuccess records a finished run.
func (m *Metrics) ObserveSuccess(engine string, size model.ModelSize, result model.TranscriptionResult) {
	m.runs.WithLabelValues(engine, string(size), "success").Inc()
	m.audioSeconds.Set(float64(result.AudioDurationMs) / 1000)
	m.processSeconds.Set(float64(result.ProcessingDurationMs) / 1000)
	if ratio, ok := SpeedRatio(result.AudioDurationMs, result.ProcessingDurationMs); ok {
		m.speedRatio.Set(ratio)
	}
	m.segments.Set(float64(result.SegmentCount))
	m.lastRunTimestamp.SetToCurrentTime()
}

// ObserveFailure records a failed run, labelled with the error kind.
func (m *Metrics) ObserveFailure(engine string, size model.ModelSize, err error) {
	m.runs.WithLabelValues(engine, string(size), errors.KindOf(err).String()).Inc()
	m.lastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the metrics in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.E(errors.KindOutputWrite, "failed to write metrics file", err)
	}
	return nil
}
