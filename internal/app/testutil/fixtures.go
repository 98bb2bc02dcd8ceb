package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-transcribe/internal/app/model"
)

// Segments builds consecutive one-second segments with the given texts.
func Segments(texts ...string) []model.Segment {
	segments := make([]model.Segment, 0, len(texts))
	for i, text := range texts {
		segments = append(segments, model.Segment{
			Index: i,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  text,
		})
	}
	return segments
}

// ProbeJSON is ffprobe output for a normalized 16 kHz mono WAV of the given
// duration in seconds ("600.000000").
func ProbeJSON(durationSeconds string) string {
	return fmt.Sprintf(`{
  "streams": [
    {"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 1}
  ],
  "format": {"format_name": "wav", "duration": %q}
}`, durationSeconds)
}

// CodecRunner fakes ffmpeg and ffprobe. ffmpeg writes a stub WAV to its last
// argument, ffprobe answers with ProbeJSON(durationSeconds).
type CodecRunner struct {
	DurationSeconds string
	DecodeErr       error
	Calls           []string
}

// Run has the signature of audio.Runner.
func (c *CodecRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	c.Calls = append(c.Calls, filepath.Base(name))
	switch filepath.Base(name) {
	case "ffmpeg":
		if c.DecodeErr != nil {
			return nil, c.DecodeErr
		}
		return nil, os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o600)
	case "ffprobe":
		return []byte(ProbeJSON(c.DurationSeconds)), nil
	default:
		return nil, fmt.Errorf("unexpected binary %s", name)
	}
}

// CreateTempFile writes content to name inside dir and returns its path.
func CreateTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file %s: %v", path, err)
	}
	return path
}

// FakeBinary writes an executable shell script named name into dir.
func FakeBinary(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to create fake binary %s: %v", path, err)
	}
	return path
}
