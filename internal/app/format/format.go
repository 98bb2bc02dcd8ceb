// Package format validates input extensions against the supported table
// and maps them to the decoder's canonical format names.
package format

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
)

type entry struct {
	ext    string
	format string
}

// supported is ordered so error messages list formats predictably.
var supported = []entry{
	{".mp3", "mp3"},
	{".m4a", "m4a"},
	{".mp4", "mp4"},
	{".wav", "wav"},
	{".flac", "flac"},
	{".ogg", "ogg"},
	{".aac", "aac"},
	{".wma", "wma"},
	{".aiff", "aiff"},
}

// SupportedExtensions returns the accepted extensions in table order.
func SupportedExtensions() []string {
	return lo.Map(supported, func(e entry, _ int) string { return e.ext })
}

// Lookup returns the canonical decoder format for ext (case-insensitive).
func Lookup(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	e, ok := lo.Find(supported, func(e entry) bool { return e.ext == ext })
	return e.format, ok
}

// Resolve validates path's extension and returns the input description.
// It never touches the file contents.
func Resolve(path string) (model.InputSpec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := Lookup(ext)
	if !ok {
		return model.InputSpec{}, errors.UnsupportedFormat(ext, SupportedExtensions())
	}
	return model.InputSpec{
		Path:           path,
		Extension:      ext,
		ResolvedFormat: format,
	}, nil
}
