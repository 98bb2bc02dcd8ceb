package report

import (
	"fmt"
	"time"

	"media-transcribe/internal/app/model"
)

// Banner opens the end-of-run summary.
const Banner = "✨ Transcription complete! ✨"

// FormatTime renders milliseconds as "1h 1m 1s", "1m 0s" or "59s".
// Every component is truncated.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// SpeedRatio is audio duration over processing duration. ok is false when
// processing took under a millisecond and the ratio is undefined.
func SpeedRatio(audioMs, processingMs int64) (ratio float64, ok bool) {
	if processingMs <= 0 {
		return 0, false
	}
	return float64(audioMs) / float64(processingMs), true
}

// FormatSpeedRatio renders the ratio with one decimal, e.g. "2.0x".
func FormatSpeedRatio(audioMs, processingMs int64) string {
	ratio, ok := SpeedRatio(audioMs, processingMs)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1fx", ratio)
}

// Summary returns the banner and the three summary lines for result.
func Summary(result model.TranscriptionResult) []string {
	speed := "Speed ratio: n/a (processing took under 1ms)"
	if _, ok := SpeedRatio(result.AudioDurationMs, result.ProcessingDurationMs); ok {
		speed = fmt.Sprintf("Speed ratio: %s real-time",
			FormatSpeedRatio(result.AudioDurationMs, result.ProcessingDurationMs))
	}
	return []string{
		Banner,
		"Audio duration: " + FormatTime(result.AudioDurationMs),
		"Processing time: " + FormatTime(result.ProcessingDurationMs),
		speed,
	}
}

// Clock measures one wall-clock interval.
type Clock struct {
	now   func() time.Time
	start time.Time
	end   time.Time
}

// NewClock returns a Clock reading time from now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start records the beginning of the interval.
func (c *Clock) Start() {
	c.start = c.now()
	c.end = time.Time{}
}

// Stop records the end of the interval and returns its length in milliseconds.
func (c *Clock) Stop() int64 {
	c.end = c.now()
	return c.ElapsedMs()
}

// ElapsedMs is the measured interval, or the time since Start while running.
func (c *Clock) ElapsedMs() int64 {
	if c.start.IsZero() {
		return 0
	}
	end := c.end
	if end.IsZero() {
		end = c.now()
	}
	return end.Sub(c.start).Milliseconds()
}
