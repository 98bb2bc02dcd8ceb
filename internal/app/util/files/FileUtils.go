package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"media-transcribe/internal/app/errors"
)

// TranscriptExtension is appended to the input stem when no output is given.
const TranscriptExtension = ".txt"

// DefaultOutputPath replaces the input's extension with .txt, keeping the
// directory: /a/clip.wav -> /a/clip.txt.
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + TranscriptExtension
}

// ResolveOutputPath returns override when set, the default path otherwise.
func ResolveOutputPath(inputPath, override string) string {
	if override != "" {
		return override
	}
	return DefaultOutputPath(inputPath)
}

// CheckInputFile verifies that path names an existing regular file.
func CheckInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Ef(errors.KindInvalidInput, nil, "input file %s does not exist", path)
		}
		return errors.E(errors.KindInvalidInput, fmt.Sprintf("cannot access input file %s", path), err)
	}
	if info.IsDir() {
		return errors.Ef(errors.KindInvalidInput, nil, "input %s is a directory", path)
	}
	return nil
}

// WriteTranscript writes text as UTF-8 to path, creating or truncating it.
// Invalid byte sequences, such as a character whisper.cpp split across two
// segments, are replaced with U+FFFD.
func WriteTranscript(path, text string) error {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.E(errors.KindOutputWrite, fmt.Sprintf("failed to write transcript to %s", path), err)
	}
	return nil
}

// ReadOutputFile reads the specified output file and returns its text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
