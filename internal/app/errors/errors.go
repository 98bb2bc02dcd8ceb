package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can tell a caller mistake from an
// environment or processing problem without matching on message text.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnsupportedFormat
	KindInvalidInput
	KindConfig
	KindDecode
	KindModelLoad
	KindTranscription
	KindOutputWrite
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindInvalidInput:
		return "invalid_input"
	case KindConfig:
		return "config"
	case KindDecode:
		return "decode"
	case KindModelLoad:
		return "model_load"
	case KindTranscription:
		return "transcription"
	case KindOutputWrite:
		return "output_write"
	default:
		return "unknown"
	}
}

// CodecHint is appended to processing failures.
const CodecHint = "Make sure you have the necessary codecs installed (try installing ffmpeg)"

// Sentinels for errors.Is checks by kind.
var (
	ErrUnsupportedFormat = &Error{kind: KindUnsupportedFormat}
	ErrInvalidInput      = &Error{kind: KindInvalidInput}
	ErrConfig            = &Error{kind: KindConfig}
	ErrDecode            = &Error{kind: KindDecode}
	ErrModelLoad         = &Error{kind: KindModelLoad}
	ErrTranscription     = &Error{kind: KindTranscription}
	ErrOutputWrite       = &Error{kind: KindOutputWrite}
)

// Error represents a standardized error
type Error struct {
	kind       Kind
	message    string
	hint       string
	cause      error
	processing bool
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// E builds a kinded error. cause may be nil.
func E(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Ef is E with a formatted message.
func Ef(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: cause}
}

// Ensure tags err with kind unless something in its chain is already kinded.
func Ensure(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return E(kind, message, err)
}

// Kind reports the error's own kind, which may be KindUnknown for plain wraps.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if e.cause != nil {
		if e.message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.cause.Error())
	}
	if e.hint != "" {
		b.WriteString("\n")
		b.WriteString(e.hint)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinels by kind and everything else by message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.message == "" && t.cause == nil {
		return t.kind != KindUnknown && e.kind == t.kind
	}
	return e.message == t.message
}

// KindOf returns the first concrete kind found walking err's chain.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.kind != KindUnknown {
			return e.kind
		}
		err = e.cause
	}
	return KindUnknown
}

// UnsupportedFormat reports an extension missing from the supported table.
func UnsupportedFormat(ext string, supported []string) error {
	if ext == "" {
		ext = "(none)"
	}
	return &Error{
		kind:    KindUnsupportedFormat,
		message: fmt.Sprintf("Unsupported file format: %s\nSupported formats are: %s", ext, strings.Join(supported, ", ")),
	}
}

// ProcessingFailure folds a stage failure into the user-facing processing
// error. The inner kind stays reachable through KindOf. Unsupported-format
// errors pass through untouched.
func ProcessingFailure(err error) error {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	if kind == KindUnsupportedFormat || IsProcessingFailure(err) {
		return err
	}
	pf := &Error{
		kind:       kind,
		message:    "Error processing audio",
		cause:      err,
		processing: true,
	}
	if kind != KindOutputWrite {
		pf.hint = CodecHint
	}
	return pf
}

// IsProcessingFailure reports whether err was produced by ProcessingFailure.
func IsProcessingFailure(err error) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.processing {
			return true
		}
		err = e.cause
	}
	return false
}

// IsCallerError reports failures the operator can fix by changing the invocation.
func IsCallerError(err error) bool {
	switch KindOf(err) {
	case KindUnsupportedFormat, KindInvalidInput, KindConfig:
		return true
	default:
		return false
	}
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return E(KindConfig, fmt.Sprintf("%s is required", field), nil)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return E(KindConfig, fmt.Sprintf("%s is invalid: %s", field, reason), nil)
}
