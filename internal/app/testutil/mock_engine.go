package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/model"
)

// MockEngine is a testify mock of api.Engine.
type MockEngine struct {
	mock.Mock
}

// NewMockEngine returns a mock whose Name is always name.
func NewMockEngine(name string) *MockEngine {
	m := &MockEngine{}
	m.On("Name").Return(name).Maybe()
	return m
}

func (m *MockEngine) Name() string {
	return m.Called().String(0)
}

func (m *MockEngine) Load(ctx context.Context, cfg model.RecognitionConfig) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockEngine) Transcribe(ctx context.Context, audioPath string, opts api.Options) (api.SegmentIterator, error) {
	args := m.Called(ctx, audioPath, opts)
	it, _ := args.Get(0).(api.SegmentIterator)
	return it, args.Error(1)
}

// TrackingIterator replays segments and records how it was consumed.
type TrackingIterator struct {
	Segments []model.Segment
	// Fail is returned from Err once the segments are exhausted.
	Fail error
	// CloseErr is returned from Close.
	CloseErr error

	NextCalls  int
	CloseCalls int
	pos        int
}

func (t *TrackingIterator) Next() bool {
	t.NextCalls++
	if t.pos >= len(t.Segments) {
		return false
	}
	t.pos++
	return true
}

func (t *TrackingIterator) Segment() model.Segment {
	if t.pos == 0 || t.pos > len(t.Segments) {
		return model.Segment{}
	}
	return t.Segments[t.pos-1]
}

func (t *TrackingIterator) Err() error {
	if t.pos >= len(t.Segments) {
		return t.Fail
	}
	return nil
}

func (t *TrackingIterator) Close() error {
	t.CloseCalls++
	return t.CloseErr
}
