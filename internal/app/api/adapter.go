package api

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
)

// Transcript is the flattened recognizer output for one audio file.
type Transcript struct {
	Text     string
	Segments []model.Segment
}

// Adapter owns one engine for the lifetime of a run. The model is loaded at
// most once, and every segment stream is drained exactly once.
type Adapter struct {
	engine Engine
	cfg    model.RecognitionConfig
	logger *zap.Logger

	loadOnce sync.Once
	loadErr  error
}

// NewAdapter wraps engine with the run's recognition config.
func NewAdapter(engine Engine, cfg model.RecognitionConfig, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{engine: engine, cfg: cfg, logger: logger}
}

// EngineName returns the wrapped engine's name.
func (a *Adapter) EngineName() string {
	return a.engine.Name()
}

// Load loads the model. Later calls return the first call's result.
func (a *Adapter) Load(ctx context.Context) error {
	a.loadOnce.Do(func() {
		a.logger.Debug("loading model",
			zap.String("engine", a.engine.Name()),
			zap.String("model", string(a.cfg.ModelSize)))
		if err := a.engine.Load(ctx, a.cfg); err != nil {
			a.loadErr = errors.Ensure(errors.KindModelLoad, err,
				"failed to load "+string(a.cfg.ModelSize)+" model")
		}
	})
	return a.loadErr
}

// Transcribe runs the engine over audio and joins the segment texts with a
// single space, in emission order. Text is not trimmed or normalized.
func (a *Adapter) Transcribe(ctx context.Context, audio model.NormalizedAudio, onProgress func(percent int)) (_ Transcript, err error) {
	if err := a.Load(ctx); err != nil {
		return Transcript{}, err
	}

	it, err := a.engine.Transcribe(ctx, audio.Path, Options{
		Language:   a.cfg.Language,
		OnProgress: onProgress,
	})
	if err != nil {
		return Transcript{}, errors.Ensure(errors.KindTranscription, err, "failed to start transcription")
	}
	defer func() {
		if closeErr := it.Close(); closeErr != nil {
			if err == nil {
				err = errors.Ensure(errors.KindTranscription, closeErr, "transcription did not finish cleanly")
				return
			}
			a.logger.Debug("closing segment stream", zap.Error(closeErr))
		}
	}()

	segments := drain(it)
	if err := it.Err(); err != nil {
		return Transcript{}, errors.Ensure(errors.KindTranscription, err, "transcription failed")
	}
	if err := ctx.Err(); err != nil {
		return Transcript{}, errors.E(errors.KindTranscription, "transcription interrupted", err)
	}

	a.logger.Debug("transcription finished",
		zap.String("engine", a.engine.Name()),
		zap.Int("segments", len(segments)))

	return Transcript{
		Text:     JoinSegments(segments),
		Segments: segments,
	}, nil
}

func drain(it SegmentIterator) []model.Segment {
	var segments []model.Segment
	for it.Next() {
		segments = append(segments, it.Segment())
	}
	return segments
}

// JoinSegments concatenates segment texts separated by one space.
func JoinSegments(segments []model.Segment) string {
	return strings.Join(lo.Map(segments, func(s model.Segment, _ int) string {
		return s.Text
	}), " ")
}
