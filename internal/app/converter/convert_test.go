package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/audio"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/logger"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/app/report"
	"media-transcribe/internal/app/testutil"
	"media-transcribe/internal/app/util/files"
	"media-transcribe/internal/config"
)

var baseRecognition = model.RecognitionConfig{ModelSize: model.ModelBase, Language: "auto"}

type pipeline struct {
	converter *Converter
	engine    *testutil.MockEngine
	codecs    *testutil.CodecRunner
	metrics   *report.Metrics
	stdout    *bytes.Buffer
	tempDir   string
	inputDir  string
}

// steppingClock returns t0, then t0+step, t0+2*step, ...
func steppingClock(step time.Duration) func() time.Time {
	t0 := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		now := t0.Add(time.Duration(calls) * step)
		calls++
		return now
	}
}

func newPipeline(t *testing.T, durationSeconds string) *pipeline {
	t.Helper()
	p := &pipeline{
		engine:   testutil.NewMockEngine("fake"),
		codecs:   &testutil.CodecRunner{DurationSeconds: durationSeconds},
		metrics:  report.NewMetrics(),
		stdout:   &bytes.Buffer{},
		tempDir:  t.TempDir(),
		inputDir: t.TempDir(),
	}
	log := zaptest.NewLogger(t)
	normalizer := audio.NewNormalizer(config.FFmpegConfig{}, p.tempDir, log).WithRunner(p.codecs.Run)
	adapter := api.NewAdapter(p.engine, baseRecognition, log)
	p.converter = NewConverter(normalizer, adapter, baseRecognition,
		NewProgressManager(ProgressConfig{Enabled: false}), p.metrics, log).
		WithOutput(p.stdout).
		WithClock(steppingClock(time.Minute))
	return p
}

func (p *pipeline) input(t *testing.T, name string) string {
	return testutil.CreateTempFile(t, p.inputDir, name, "ID3")
}

func (p *pipeline) expectTranscription(t *testing.T, it api.SegmentIterator, err error) {
	p.engine.On("Load", mock.Anything, baseRecognition).Return(nil).Once()
	p.engine.On("Transcribe", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			path := args.String(1)
			assert.Equal(t, p.tempDir, filepath.Dir(path))
			_, statErr := os.Stat(path)
			assert.NoError(t, statErr, "normalized audio must exist during recognition")
		}).
		Return(it, err).Once()
}

func (p *pipeline) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(p.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDoLectureEndToEnd(t *testing.T) {
	p := newPipeline(t, "600.000000")
	input := p.input(t, "lecture.mp3")
	p.expectTranscription(t, &testutil.TrackingIterator{Segments: testutil.Segments("Hello", "world")}, nil)

	result, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.NoError(t, err)
	want := filepath.Join(p.inputDir, "lecture.txt")
	assert.Equal(t, want, result.OutputPath)
	assert.Equal(t, int64(600000), result.AudioDurationMs)
	assert.Equal(t, int64(60000), result.ProcessingDurationMs)
	assert.Equal(t, 2, result.SegmentCount)

	text, err := files.ReadOutputFile(want)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	assert.Equal(t, strings.Join([]string{
		"Processing audio...",
		"Transcribing audio... (this may take a while)",
		"Writing transcription...",
		"",
		"✨ Transcription complete! ✨",
		"Audio duration: 10m 0s",
		"Processing time: 1m 0s",
		"Speed ratio: 10.0x real-time",
		"",
	}, "\n"), p.stdout.String())

	p.assertNoTempFiles(t)
	assert.Equal(t, []string{"ffmpeg", "ffprobe"}, p.codecs.Calls)
	runs, err := promtestutil.GatherAndCount(p.metrics.Registry(), "transcribe_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	p.engine.AssertExpectations(t)
}

func TestDoOutputOverride(t *testing.T) {
	p := newPipeline(t, "2.0")
	input := p.input(t, "clip.wav")
	output := filepath.Join(t.TempDir(), "custom.txt")
	require.NoError(t, os.WriteFile(output, []byte("stale transcript"), 0o644))
	p.expectTranscription(t, &testutil.TrackingIterator{Segments: testutil.Segments("fresh")}, nil)

	result, err := p.converter.Do(context.Background(), Request{InputPath: input, OutputPath: output})

	require.NoError(t, err)
	assert.Equal(t, output, result.OutputPath)
	text, err := files.ReadOutputFile(output)
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)
	assert.NoFileExists(t, filepath.Join(p.inputDir, "clip.txt"))
}

func TestDoUnsupportedFormatFailsBeforeLoading(t *testing.T) {
	p := newPipeline(t, "1.0")
	input := p.input(t, "notes.docx")

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.Error(t, err)
	assert.Equal(t, errors.KindUnsupportedFormat, errors.KindOf(err))
	assert.False(t, errors.IsProcessingFailure(err))
	assert.NotContains(t, err.Error(), errors.CodecHint)
	for _, ext := range []string{".mp3", ".m4a", ".mp4", ".wav", ".flac", ".ogg", ".aac", ".wma", ".aiff"} {
		assert.Contains(t, err.Error(), ext)
	}
	p.engine.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	assert.Empty(t, p.codecs.Calls)
	assert.Empty(t, p.stdout.String())
}

func TestDoDecodeFailure(t *testing.T) {
	p := newPipeline(t, "1.0")
	p.codecs.DecodeErr = fmt.Errorf("exit status 1, stderr: Invalid data found when processing input")
	input := p.input(t, "broken.ogg")
	p.engine.On("Load", mock.Anything, baseRecognition).Return(nil).Once()

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.Error(t, err)
	assert.True(t, errors.IsProcessingFailure(err))
	assert.Equal(t, errors.KindDecode, errors.KindOf(err))
	assert.True(t, strings.HasPrefix(err.Error(), "Error processing audio: "))
	assert.Contains(t, err.Error(), "Invalid data found")
	assert.Contains(t, err.Error(), errors.CodecHint)
	p.engine.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
	p.assertNoTempFiles(t)
	assert.NoFileExists(t, filepath.Join(p.inputDir, "broken.txt"))
}

func TestDoModelLoadFailure(t *testing.T) {
	p := newPipeline(t, "1.0")
	input := p.input(t, "clip.flac")
	p.engine.On("Load", mock.Anything, baseRecognition).Return(fmt.Errorf("weights not found")).Once()

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.Error(t, err)
	assert.True(t, errors.IsProcessingFailure(err))
	assert.Equal(t, errors.KindModelLoad, errors.KindOf(err))
	assert.Empty(t, p.codecs.Calls, "nothing is decoded when the model cannot load")
}

func TestDoTranscriptionFailureRemovesTempAudio(t *testing.T) {
	p := newPipeline(t, "30.5")
	input := p.input(t, "talk.m4a")
	p.expectTranscription(t, &testutil.TrackingIterator{
		Segments: testutil.Segments("partial"),
		Fail:     fmt.Errorf("whisper.cpp failed: signal: killed"),
	}, nil)

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.Error(t, err)
	assert.Equal(t, errors.KindTranscription, errors.KindOf(err))
	assert.Contains(t, err.Error(), "signal: killed")
	p.assertNoTempFiles(t)
	assert.NoFileExists(t, filepath.Join(p.inputDir, "talk.txt"), "no partial output")
}

func TestDoOutputWriteFailure(t *testing.T) {
	p := newPipeline(t, "1.0")
	input := p.input(t, "clip.aac")
	p.expectTranscription(t, &testutil.TrackingIterator{Segments: testutil.Segments("text")}, nil)

	_, err := p.converter.Do(context.Background(), Request{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "missing", "out.txt"),
	})

	require.Error(t, err)
	assert.True(t, errors.IsProcessingFailure(err))
	assert.Equal(t, errors.KindOutputWrite, errors.KindOf(err))
	assert.NotContains(t, err.Error(), errors.CodecHint)
	p.assertNoTempFiles(t)
}

func TestDoLogsRunFields(t *testing.T) {
	p := newPipeline(t, "1.0")
	var logs bytes.Buffer
	p.converter.logger = logger.NewWriterLogger(&logs, zapcore.InfoLevel)
	input := p.input(t, "memo.wav")
	p.expectTranscription(t, &testutil.TrackingIterator{Segments: testutil.Segments("hi")}, nil)

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, "run_id")
	assert.Contains(t, out, `"engine": "fake"`)
	assert.Contains(t, out, `"segments": 1`)
}

func TestDoColorsBannerOnTerminal(t *testing.T) {
	p := newPipeline(t, "60.0")
	p.converter.WithColor(true)
	input := p.input(t, "memo.mp3")
	p.expectTranscription(t, &testutil.TrackingIterator{Segments: testutil.Segments("hi")}, nil)

	_, err := p.converter.Do(context.Background(), Request{InputPath: input})

	require.NoError(t, err)
	assert.Contains(t, p.stdout.String(), "\x1b[32m"+report.Banner+"\x1b[0m\n")
	assert.Contains(t, p.stdout.String(), "\nAudio duration: 1m 0s\n", "summary lines stay plain")
}
