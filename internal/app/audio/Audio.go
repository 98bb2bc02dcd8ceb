package audio

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/config"
)

// NormalizedFormat is the only container the recognizers are fed.
const NormalizedFormat = "wav"

// normalizedCodec is 16-bit little-endian PCM, what whisper.cpp reads.
const normalizedCodec = "pcm_s16le"

// Runner executes an external tool and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs the command and folds stderr into the error.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%w, stderr: %s", err, msg)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// Normalizer decodes any supported container into a scoped temporary WAV file.
type Normalizer struct {
	ffmpegPath  string
	ffprobePath string
	sampleRate  int
	channels    int
	tempDir     string
	logger      *zap.Logger
	run         Runner
}

// NewNormalizer creates a normalizer for the configured codec toolchain.
// An empty tempDir means the OS default.
func NewNormalizer(cfg config.FFmpegConfig, tempDir string, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Normalizer{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		tempDir:     tempDir,
		logger:      logger,
		run:         execRunner,
	}
	if n.ffmpegPath == "" {
		n.ffmpegPath = config.DefaultFFmpegPath
	}
	if n.ffprobePath == "" {
		n.ffprobePath = config.DefaultFFprobePath
	}
	if n.sampleRate == 0 {
		n.sampleRate = config.DefaultSampleRate
	}
	if n.channels == 0 {
		n.channels = config.DefaultChannels
	}
	return n
}

// WithRunner replaces the command runner (for testing).
func (n *Normalizer) WithRunner(run Runner) *Normalizer {
	n.run = run
	return n
}

// WithNormalized decodes spec into a fresh temporary WAV file, hands it to fn
// and deletes it afterwards. The file is removed on every exit path, including
// decode failures, errors returned by fn and panics.
func (n *Normalizer) WithNormalized(ctx context.Context, spec model.InputSpec, fn func(model.NormalizedAudio) error) error {
	tmp, err := os.CreateTemp(n.tempDir, "transcribe-*."+NormalizedFormat)
	if err != nil {
		return errors.E(errors.KindDecode, "failed to create temporary audio file", err)
	}
	path := tmp.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			n.logger.Warn("failed to remove temporary audio file", zap.String("path", path), zap.Error(rmErr))
			return
		}
		n.logger.Debug("removed temporary audio file", zap.String("path", path))
	}()
	if err := tmp.Close(); err != nil {
		return errors.E(errors.KindDecode, "failed to create temporary audio file", err)
	}

	if err := n.convertToWav(ctx, spec, path); err != nil {
		return err
	}

	probe, err := n.probe(ctx, path)
	if err != nil {
		return err
	}
	durationMs, err := probe.durationMs()
	if err != nil {
		return errors.E(errors.KindDecode, fmt.Sprintf("failed to read duration of decoded %s", spec.Path), err)
	}

	audio := model.NormalizedAudio{
		Path:       path,
		Format:     NormalizedFormat,
		SampleRate: n.sampleRate,
		Channels:   n.channels,
		DurationMs: durationMs,
	}
	n.logger.Debug("audio normalized",
		zap.String("input", spec.Path),
		zap.String("format", spec.ResolvedFormat),
		zap.String("path", path),
		zap.Int64("duration_ms", durationMs))

	return fn(audio)
}

// ffmpegArgs builds the decode command line.
func (n *Normalizer) ffmpegArgs(spec model.InputSpec, outputWavPath string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if demuxer := demuxerFor(spec.ResolvedFormat); demuxer != "" {
		args = append(args, "-f", demuxer)
	}
	args = append(args,
		"-i", spec.Path,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(n.channels),
		"-ar", strconv.Itoa(n.sampleRate),
		"-c:a", normalizedCodec,
		"-f", NormalizedFormat,
		outputWavPath,
	)
	return args
}

func (n *Normalizer) convertToWav(ctx context.Context, spec model.InputSpec, outputWavPath string) error {
	n.logger.Debug("decoding audio",
		zap.String("input", spec.Path),
		zap.String("format", spec.ResolvedFormat),
		zap.Int("sample_rate", n.sampleRate),
		zap.Int("channels", n.channels))

	if _, err := n.run(ctx, n.ffmpegPath, n.ffmpegArgs(spec, outputWavPath)...); err != nil {
		return decodeError(n.ffmpegPath, fmt.Sprintf("failed to decode %s as %s", spec.Path, spec.ResolvedFormat), err)
	}
	return nil
}

// probe inspects a file with ffprobe and checks it is the expected PCM WAV.
func (n *Normalizer) probe(ctx context.Context, path string) (probeResult, error) {
	output, err := n.run(ctx, n.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path)
	if err != nil {
		return probeResult{}, decodeError(n.ffprobePath, "failed to inspect decoded audio", err)
	}

	var out model.FFProbeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return probeResult{}, errors.E(errors.KindDecode, "failed to parse ffprobe output", err)
	}
	result := probeResult{out}
	if !result.isNormalized(n.sampleRate) {
		return probeResult{}, errors.Ef(errors.KindDecode, nil,
			"decoded audio is not %d Hz %s (missing codec support?)", n.sampleRate, normalizedCodec)
	}
	return result, nil
}

type probeResult struct {
	model.FFProbeOutput
}

func (p probeResult) isNormalized(sampleRate int) bool {
	for _, stream := range p.Streams {
		if stream.CodecType == "audio" && stream.CodecName == normalizedCodec && stream.SampleRate == sampleRate {
			return true
		}
	}
	return false
}

func (p probeResult) durationMs() (int64, error) {
	return ParseDurationMs(p.Format.Duration)
}

// ParseDurationMs converts ffprobe's decimal seconds ("600.000000") into
// whole milliseconds, truncating anything below a millisecond.
func ParseDurationMs(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("duration unavailable")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if strings.HasPrefix(whole, "-") {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	secs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	frac = (frac + "000")[:3]
	ms, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return secs*1000 + ms, nil
}

// demuxerFor returns the ffmpeg demuxer to force for a canonical format.
// Containers ffmpeg names differently (m4a, mp4, wma) are left to probing.
func demuxerFor(format string) string {
	switch format {
	case "mp3", "wav", "flac", "ogg", "aac", "aiff":
		return format
	default:
		return ""
	}
}

func decodeError(binary, message string, err error) error {
	if stderrors.Is(err, exec.ErrNotFound) {
		return errors.E(errors.KindDecode,
			fmt.Sprintf("%s: %s not found (is the codec toolchain installed?)", message, binary), err)
	}
	return errors.E(errors.KindDecode, message+" (missing codec support?)", err)
}
