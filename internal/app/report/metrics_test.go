package report

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
)

func TestMetricsObserveSuccess(t *testing.T) {
	m := NewMetrics()

	m.ObserveSuccess("whisper_cpp", model.ModelBase, model.TranscriptionResult{
		AudioDurationMs:      120000,
		ProcessingDurationMs: 60000,
		SegmentCount:         12,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("whisper_cpp", "base", "success")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.audioSeconds))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.processSeconds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.speedRatio))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.segments))
}

func TestMetricsObserveFailureUsesKind(t *testing.T) {
	m := NewMetrics()

	m.ObserveFailure("openai", model.ModelTiny, errors.E(errors.KindModelLoad, "no key", nil))
	m.ObserveFailure("openai", model.ModelTiny, fmt.Errorf("plain"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("openai", "tiny", "model_load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("openai", "tiny", "unknown")))
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveSuccess("whisper_cpp", model.ModelBase, model.TranscriptionResult{AudioDurationMs: 1000, ProcessingDurationMs: 500})
	path := filepath.Join(t.TempDir(), "transcribe.prom")

	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `transcribe_runs_total{engine="whisper_cpp",model="base",outcome="success"} 1`)
	assert.Contains(t, string(data), "transcribe_speed_ratio 2")
}

func TestMetricsWriteTextfileFailure(t *testing.T) {
	m := NewMetrics()

	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))

	assert.Equal(t, errors.KindOutputWrite, errors.KindOf(err))
}
