package whisper_cpp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"media-transcribe/internal/app/model"
)

var (
	// [00:00:00.000 --> 00:00:02.640]  And so my fellow Americans
	segmentLine = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.(\d{3}) --> (\d{2}):(\d{2}):(\d{2})\.(\d{3})\]  (.*)$`)
	// whisper_print_progress_callback: progress =  45%
	progressLine = regexp.MustCompile(`progress\s*=\s*(\d{1,3})%`)
)

const stderrTailLines = 20

// ParseSegmentLine extracts a segment from one line of whisper.cpp stdout.
// The text after the two-space separator is returned verbatim.
func ParseSegmentLine(line string) (model.Segment, bool) {
	m := segmentLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return model.Segment{}, false
	}
	return model.Segment{
		Start: clockDuration(m[1:5]),
		End:   clockDuration(m[5:9]),
		Text:  m[9],
	}, true
}

// ParseProgressLine extracts the percentage from a whisper.cpp progress line.
func ParseProgressLine(line string) (int, bool) {
	m := progressLine.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	p, err := strconv.Atoi(m[1])
	if err != nil || p > 100 {
		return 0, false
	}
	return p, true
}

func clockDuration(parts []string) time.Duration {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// stream yields segments while whisper.cpp is still running.
type stream struct {
	ctx     context.Context
	cmd     *exec.Cmd
	scanner *bufio.Scanner

	stderrDone chan struct{}
	mu         sync.Mutex
	tail       []string

	current model.Segment
	index   int
	err     error
	done    bool
	waited  bool
}

func newStream(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.Reader, onProgress func(int)) *stream {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	s := &stream{
		ctx:        ctx,
		cmd:        cmd,
		scanner:    scanner,
		stderrDone: make(chan struct{}),
	}
	go s.readStderr(stderr, onProgress)
	return s
}

func (s *stream) readStderr(r io.Reader, onProgress func(int)) {
	defer close(s.stderrDone)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	last := -1
	for scanner.Scan() {
		line := scanner.Text()
		if p, ok := ParseProgressLine(line); ok {
			if onProgress != nil && p != last {
				onProgress(p)
				last = p
			}
			continue
		}
		s.mu.Lock()
		s.tail = append(s.tail, line)
		if len(s.tail) > stderrTailLines {
			s.tail = s.tail[len(s.tail)-stderrTailLines:]
		}
		s.mu.Unlock()
	}
}

func (s *stream) Next() bool {
	if s.done {
		return false
	}
	for s.scanner.Scan() {
		seg, ok := ParseSegmentLine(s.scanner.Text())
		if !ok {
			continue
		}
		seg.Index = s.index
		s.index++
		s.current = seg
		return true
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("reading whisper.cpp output: %w", err)
		// stdout is no longer drained, so the process would block on a full pipe.
		s.stop()
		return false
	}
	s.finish()
	return false
}

func (s *stream) Segment() model.Segment { return s.current }

func (s *stream) Err() error { return s.err }

// finish reaps the process once stdout is exhausted.
func (s *stream) finish() {
	<-s.stderrDone
	waitErr := s.cmd.Wait()
	s.waited = true
	if s.err != nil {
		return
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = ctxErr
		return
	}
	if waitErr != nil {
		s.mu.Lock()
		tail := strings.Join(s.tail, "\n")
		s.mu.Unlock()
		if tail != "" {
			s.err = fmt.Errorf("whisper.cpp failed: %w, stderr: %s", waitErr, tail)
		} else {
			s.err = fmt.Errorf("whisper.cpp failed: %w", waitErr)
		}
	}
}

// Close stops whisper.cpp if the stream was abandoned early.
func (s *stream) Close() error {
	if s.waited {
		return nil
	}
	s.done = true
	s.stop()
	return nil
}

// stop kills the process and reaps it. Wait closes our pipe ends first so
// that children still holding stderr cannot keep the reader alive.
func (s *stream) stop() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.waited = true
	<-s.stderrDone
}
