package converter

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager draws one bar at a time on the diagnostics stream.
type ProgressManager struct {
	writer  io.Writer
	enabled bool
}

type ProgressBar struct {
	container *mpb.Progress
	bar       *mpb.Bar
	total     int64
	enabled   bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressManager{writer: writer, enabled: true}
}

// CreateBar starts a bar with its own container so that it can be finished
// before anything else is printed.
func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	if pm == nil || !pm.enabled {
		return &ProgressBar{enabled: false}
	}

	// Bars are only enabled once the caller decided to draw them, so render
	// even when the writer is not detected as a terminal.
	container := mpb.New(
		mpb.WithOutput(pm.writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithAutoRefresh(),
	)
	bar := container.New(int64(total),
		mpb.BarStyle().Lbound("").Filler("█").Tip("█").Padding("░").Rbound(""),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), ""),
		),
	)

	return &ProgressBar{
		container: container,
		bar:       bar,
		total:     int64(total),
		enabled:   true,
	}
}

func (pb *ProgressBar) Increment() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Increment()
	}
}

// SetPercent moves a 100-step bar to p.
func (pb *ProgressBar) SetPercent(p int) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(int64(p))
	}
}

// Complete fills the bar and waits until it is rendered.
func (pb *ProgressBar) Complete() {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(pb.total)
		pb.container.Wait()
	}
}

// Abort removes the bar after a failure and waits for the container.
func (pb *ProgressBar) Abort() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Abort(true)
		pb.container.Wait()
	}
}

// IsTTY reports whether writer is an interactive terminal. Character devices
// such as /dev/null do not count.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok || file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShouldShowProgress reports whether bars should be drawn: never when
// disabled, otherwise only on a terminal.
func ShouldShowProgress(disabled bool) bool {
	if disabled {
		return false
	}
	return IsTTY(os.Stderr)
}
