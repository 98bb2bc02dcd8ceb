package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/config"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 1}
  ],
  "format": {"format_name": "wav", "duration": "600.000000"}
}`

// fakeTools mimics ffmpeg by touching the output file and ffprobe by
// returning canned JSON.
type fakeTools struct {
	ffmpegErr  error
	probeOut   string
	probeErr   error
	ffmpegArgs []string
}

func (f *fakeTools) run(_ context.Context, name string, args ...string) ([]byte, error) {
	switch name {
	case config.DefaultFFmpegPath:
		f.ffmpegArgs = args
		if f.ffmpegErr != nil {
			return nil, f.ffmpegErr
		}
		return nil, os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o600)
	case config.DefaultFFprobePath:
		return []byte(f.probeOut), f.probeErr
	default:
		return nil, fmt.Errorf("unexpected binary %s", name)
	}
}

func newTestNormalizer(t *testing.T, tools *fakeTools) (*Normalizer, string) {
	t.Helper()
	dir := t.TempDir()
	n := NewNormalizer(config.FFmpegConfig{}, dir, nil).WithRunner(tools.run)
	return n, dir
}

func mp3Spec() model.InputSpec {
	return model.InputSpec{Path: "lecture.mp3", Extension: ".mp3", ResolvedFormat: "mp3"}
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary audio file was not removed")
}

func TestWithNormalizedSuccess(t *testing.T) {
	tools := &fakeTools{probeOut: probeJSON}
	n, dir := newTestNormalizer(t, tools)

	var seen model.NormalizedAudio
	err := n.WithNormalized(context.Background(), mp3Spec(), func(a model.NormalizedAudio) error {
		seen = a
		_, statErr := os.Stat(a.Path)
		assert.NoError(t, statErr, "audio must exist while the callback runs")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(seen.Path))
	assert.Equal(t, "wav", seen.Format)
	assert.Equal(t, 16000, seen.SampleRate)
	assert.Equal(t, 1, seen.Channels)
	assert.Equal(t, int64(600000), seen.DurationMs)
	assertDirEmpty(t, dir)
}

func TestWithNormalizedRemovesFileWhenCallbackFails(t *testing.T) {
	n, dir := newTestNormalizer(t, &fakeTools{probeOut: probeJSON})
	boom := fmt.Errorf("recognizer crashed")

	err := n.WithNormalized(context.Background(), mp3Spec(), func(model.NormalizedAudio) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assertDirEmpty(t, dir)
}

func TestWithNormalizedRemovesFileOnPanic(t *testing.T) {
	n, dir := newTestNormalizer(t, &fakeTools{probeOut: probeJSON})

	assert.Panics(t, func() {
		_ = n.WithNormalized(context.Background(), mp3Spec(), func(model.NormalizedAudio) error {
			panic("boom")
		})
	})
	assertDirEmpty(t, dir)
}

func TestWithNormalizedDecodeFailure(t *testing.T) {
	tests := []struct {
		name     string
		tools    *fakeTools
		contains string
	}{
		{
			name:     "ffmpeg exits non-zero",
			tools:    &fakeTools{ffmpegErr: fmt.Errorf("exit status 1, stderr: Invalid data found")},
			contains: "failed to decode lecture.mp3 as mp3",
		},
		{
			name:     "ffmpeg missing",
			tools:    &fakeTools{ffmpegErr: &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}},
			contains: "ffmpeg not found",
		},
		{
			name:     "ffprobe fails",
			tools:    &fakeTools{probeErr: fmt.Errorf("exit status 1")},
			contains: "failed to inspect decoded audio",
		},
		{
			name:     "garbage probe output",
			tools:    &fakeTools{probeOut: "not json"},
			contains: "failed to parse ffprobe output",
		},
		{
			name: "wrong sample rate",
			tools: &fakeTools{probeOut: `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"44100","channels":1}],
				"format":{"duration":"1.0"}}`},
			contains: "decoded audio is not 16000 Hz",
		},
		{
			name: "duration unavailable",
			tools: &fakeTools{probeOut: `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"16000","channels":1}],
				"format":{"duration":"N/A"}}`},
			contains: "failed to read duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, dir := newTestNormalizer(t, tt.tools)
			called := false

			err := n.WithNormalized(context.Background(), mp3Spec(), func(model.NormalizedAudio) error {
				called = true
				return nil
			})

			require.Error(t, err)
			assert.False(t, called)
			assert.Equal(t, errors.KindDecode, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
			assertDirEmpty(t, dir)
		})
	}
}

func TestFFmpegArgs(t *testing.T) {
	n := NewNormalizer(config.FFmpegConfig{SampleRate: 16000, Channels: 2}, "", nil)

	t.Run("forces demuxer for plain audio containers", func(t *testing.T) {
		args := n.ffmpegArgs(mp3Spec(), "/tmp/out.wav")
		assert.Equal(t, []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-f", "mp3",
			"-i", "lecture.mp3",
			"-vn", "-sn", "-dn",
			"-ac", "2",
			"-ar", "16000",
			"-c:a", "pcm_s16le",
			"-f", "wav",
			"/tmp/out.wav",
		}, args)
	})

	t.Run("lets ffmpeg probe mp4 and m4a", func(t *testing.T) {
		for _, format := range []string{"m4a", "mp4", "wma"} {
			args := n.ffmpegArgs(model.InputSpec{Path: "a." + format, ResolvedFormat: format}, "/tmp/out.wav")
			assert.Equal(t, "-i", args[4], format)
		}
	})
}

func TestParseDurationMs(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "600.000000", want: 600000},
		{in: "0.5", want: 500},
		{in: "1.2345", want: 1234},
		{in: "59.999999", want: 59999},
		{in: "30", want: 30000},
		{in: " 7200.0\n", want: 7200000},
		{in: "0.000999", want: 0},
		{in: "", wantErr: true},
		{in: "N/A", wantErr: true},
		{in: "-1.0", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDurationMs(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNormalizerDefaults(t *testing.T) {
	n := NewNormalizer(config.FFmpegConfig{}, "", nil)

	assert.Equal(t, config.DefaultFFmpegPath, n.ffmpegPath)
	assert.Equal(t, config.DefaultFFprobePath, n.ffprobePath)
	assert.Equal(t, config.DefaultSampleRate, n.sampleRate)
	assert.Equal(t, config.DefaultChannels, n.channels)
}
