package api

import (
	"context"

	"media-transcribe/internal/app/model"
)

// Engine is a speech recognizer that turns a normalized WAV file into segments.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string
	// Load prepares the model for cfg. Failures are reported as model-load errors.
	Load(ctx context.Context, cfg model.RecognitionConfig) error
	// Transcribe starts recognition of audioPath. Segments are produced lazily
	// in chronological order through the returned iterator.
	Transcribe(ctx context.Context, audioPath string, opts Options) (SegmentIterator, error)
}

// Options tune a single Transcribe call.
type Options struct {
	// Language is an ISO-639-1 code, or "auto" to let the engine detect it.
	Language string
	// OnProgress, if set, receives percentages reported by the engine.
	OnProgress func(percent int)
}

// SegmentIterator is a single-pass cursor over recognized segments:
//
//	for it.Next() {
//		seg := it.Segment()
//	}
//	if err := it.Err(); err != nil { ... }
//
// It cannot be rewound. Close releases the underlying engine resources and is
// safe to call more than once.
type SegmentIterator interface {
	Next() bool
	Segment() model.Segment
	Err() error
	Close() error
}

// SliceIterator adapts an already materialized segment list to SegmentIterator.
type SliceIterator struct {
	segments []model.Segment
	pos      int
}

// NewSliceIterator returns an iterator over segments in the given order.
func NewSliceIterator(segments []model.Segment) *SliceIterator {
	return &SliceIterator{segments: segments, pos: -1}
}

func (s *SliceIterator) Next() bool {
	if s.pos+1 >= len(s.segments) {
		s.pos = len(s.segments)
		return false
	}
	s.pos++
	return true
}

func (s *SliceIterator) Segment() model.Segment {
	if s.pos < 0 || s.pos >= len(s.segments) {
		return model.Segment{}
	}
	return s.segments[s.pos]
}

func (s *SliceIterator) Err() error   { return nil }
func (s *SliceIterator) Close() error { return nil }
