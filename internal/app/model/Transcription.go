package model

import (
	"fmt"
	"time"
)

// ModelSize selects which recognition model is loaded for a run.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// DefaultModelSize is used when no --model flag is given.
const DefaultModelSize = ModelBase

// ModelSizes lists the accepted sizes from smallest to largest.
func ModelSizes() []ModelSize {
	return []ModelSize{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge}
}

// ParseModelSize validates s against the known sizes.
func ParseModelSize(s string) (ModelSize, error) {
	for _, size := range ModelSizes() {
		if string(size) == s {
			return size, nil
		}
	}
	return "", fmt.Errorf("invalid model size %q (choose from tiny, base, small, medium, large)", s)
}

// RecognitionConfig is the per-run recognizer configuration.
type RecognitionConfig struct {
	ModelSize ModelSize
	Language  string // "auto" lets the recognizer detect it
}

// NormalizedAudio is the decoded intermediate file handed to the recognizer.
// It only exists inside the normalizer's scope.
type NormalizedAudio struct {
	Path       string
	Format     string
	SampleRate int
	Channels   int
	DurationMs int64
}

// Segment is one span of recognized speech in emission order.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// TranscriptionResult is what a finished run produced.
type TranscriptionResult struct {
	Text                 string
	SegmentCount         int
	AudioDurationMs      int64
	ProcessingDurationMs int64
	OutputPath           string
}
