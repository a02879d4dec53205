package processor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/summarai/pkg/retry"
)

// ErrorType classifies a processing failure for the ledger
type ErrorType string

const (
	TypeUnsupportedFormat ErrorType = "unsupported_format"
	TypeFileNotFound      ErrorType = "file_not_found"
	TypeValidation        ErrorType = "validation"
	TypeTranscription     ErrorType = "transcription"
	TypeSummarization     ErrorType = "summarization"
	TypeOutput            ErrorType = "output"
	TypeTransient         ErrorType = "transient"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileNotFound      = errors.New("file not found")
	ErrValidation        = errors.New("validation error")
	ErrTranscription     = errors.New("transcription failed")
	ErrSummarization     = errors.New("summarization failed")
	ErrOutput            = errors.New("output failed")
	ErrTransient         = errors.New("transient failure")
)

var markers = map[ErrorType]error{
	TypeUnsupportedFormat: ErrUnsupportedFormat,
	TypeFileNotFound:      ErrFileNotFound,
	TypeValidation:        ErrValidation,
	TypeTranscription:     ErrTranscription,
	TypeSummarization:     ErrSummarization,
	TypeOutput:            ErrOutput,
	TypeTransient:         ErrTransient,
}

// Error is a classified processing failure. Its fields map one to one onto
// the error object of a ledger record.
type Error struct {
	Type    ErrorType
	Code    string
	Service string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	parts = append(parts, string(e.Type))
	if e.Service != "" {
		parts = append(parts, e.Service)
	}
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	msg := strings.Join(parts, ": ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel for the error's type
func (e *Error) Is(target error) bool {
	marker, ok := markers[e.Type]
	return ok && marker == target
}

// Wrap classifies err. An HTTP status carried by err becomes the code, and a
// transient err is reported as TypeTransient whatever stage it came from.
func Wrap(t ErrorType, service, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	e := &Error{Type: t, Service: service, Op: op, Err: err}
	if code, ok := retry.StatusCode(err); ok {
		e.Code = strconv.Itoa(code)
	}
	if retry.IsTransient(err) {
		e.Type = TypeTransient
	}
	return e
}

// Errorf builds a classified error from a message
func Errorf(t ErrorType, service, format string, args ...any) error {
	return &Error{Type: t, Service: service, Err: fmt.Errorf(format, args...)}
}

// Classify returns the type, code and service of err. Unclassified errors
// report an empty type.
func Classify(err error) (ErrorType, string, string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, e.Code, e.Service
	}
	if code, ok := retry.StatusCode(err); ok {
		return "", strconv.Itoa(code), ""
	}
	return "", "", ""
}
