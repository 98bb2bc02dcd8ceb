package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/format"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/app/report"
	"media-transcribe/internal/app/util/files"
)

// AudioNormalizer decodes an input into a scoped temporary WAV file.
type AudioNormalizer interface {
	WithNormalized(ctx context.Context, spec model.InputSpec, fn func(model.NormalizedAudio) error) error
}

// Recognizer turns normalized audio into a transcript.
type Recognizer interface {
	EngineName() string
	Load(ctx context.Context) error
	Transcribe(ctx context.Context, audio model.NormalizedAudio, onProgress func(percent int)) (api.Transcript, error)
}

// Request describes one file to transcribe.
type Request struct {
	InputPath string
	// OutputPath overrides the default <input stem>.txt.
	OutputPath string
}

type Converter struct {
	normalizer  AudioNormalizer
	recognizer  Recognizer
	recognition model.RecognitionConfig
	progress    *ProgressManager
	metrics     *report.Metrics
	out         io.Writer
	color       bool
	logger      *zap.Logger
	now         func() time.Time
}

func NewConverter(
	normalizer AudioNormalizer,
	recognizer Recognizer,
	recognition model.RecognitionConfig,
	progress *ProgressManager,
	metrics *report.Metrics,
	logger *zap.Logger,
) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		normalizer:  normalizer,
		recognizer:  recognizer,
		recognition: recognition,
		progress:    progress,
		metrics:     metrics,
		out:         os.Stdout,
		logger:      logger,
		now:         time.Now,
	}
}

// WithOutput redirects the user-facing console lines.
func (c *Converter) WithOutput(w io.Writer) *Converter {
	c.out = w
	return c
}

// WithColor prints the completion banner in green. Callers enable it only
// when the output is a terminal.
func (c *Converter) WithColor(enabled bool) *Converter {
	c.color = enabled
	return c
}

// WithClock replaces the wall clock (for testing).
func (c *Converter) WithClock(now func() time.Time) *Converter {
	c.now = now
	return c
}

// Do transcribes one file and writes the transcript. An unsupported format is
// returned as is; every other failure becomes a processing failure that keeps
// the stage's error kind.
func (c *Converter) Do(ctx context.Context, req Request) (*model.TranscriptionResult, error) {
	log := c.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("input", req.InputPath),
		zap.String("model", string(c.recognition.ModelSize)),
		zap.String("engine", c.recognizer.EngineName()),
	)

	result, err := c.run(ctx, req, log)
	if err != nil {
		err = errors.ProcessingFailure(err)
		log.Debug("run failed", zap.String("kind", errors.KindOf(err).String()), zap.Error(err))
		if c.metrics != nil {
			c.metrics.ObserveFailure(c.recognizer.EngineName(), c.recognition.ModelSize, err)
		}
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.ObserveSuccess(c.recognizer.EngineName(), c.recognition.ModelSize, *result)
	}
	log.Info("run finished",
		zap.String("output", result.OutputPath),
		zap.Int64("audio_ms", result.AudioDurationMs),
		zap.Int64("processing_ms", result.ProcessingDurationMs),
		zap.Int("segments", result.SegmentCount))
	return result, nil
}

func (c *Converter) run(ctx context.Context, req Request, log *zap.Logger) (*model.TranscriptionResult, error) {
	spec, err := format.Resolve(req.InputPath)
	if err != nil {
		return nil, err
	}
	outputPath := files.ResolveOutputPath(req.InputPath, req.OutputPath)
	log.Debug("input resolved",
		zap.String("format", spec.ResolvedFormat),
		zap.String("output", outputPath))

	loading := c.progress.CreateBar(1, fmt.Sprintf("Loading %s model", c.recognition.ModelSize))
	if err := c.recognizer.Load(ctx); err != nil {
		loading.Abort()
		return nil, err
	}
	loading.Complete()

	clock := report.NewClock(c.now)
	clock.Start()

	c.println("Processing audio...")
	var (
		transcript api.Transcript
		audioMs    int64
	)
	err = c.normalizer.WithNormalized(ctx, spec, func(audio model.NormalizedAudio) error {
		audioMs = audio.DurationMs

		c.println("Transcribing audio... (this may take a while)")
		bar := c.progress.CreateBar(100, "Transcribing")
		t, err := c.recognizer.Transcribe(ctx, audio, bar.SetPercent)
		if err != nil {
			bar.Abort()
			return err
		}
		bar.Complete()
		transcript = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	processingMs := clock.Stop()

	c.println("Writing transcription...")
	if err := files.WriteTranscript(outputPath, transcript.Text); err != nil {
		return nil, err
	}

	result := &model.TranscriptionResult{
		Text:                 transcript.Text,
		SegmentCount:         len(transcript.Segments),
		AudioDurationMs:      audioMs,
		ProcessingDurationMs: processingMs,
		OutputPath:           outputPath,
	}

	c.println("")
	for i, line := range report.Summary(*result) {
		if i == 0 && c.color {
			banner := color.New(color.FgGreen)
			banner.EnableColor()
			line = banner.Sprint(line)
		}
		c.println(line)
	}
	return result, nil
}

func (c *Converter) println(line string) {
	fmt.Fprintln(c.out, line)
}
