package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"google.golang.org/genai"
)

// StatusError is an HTTP failure carrying the response status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int { return e.Code }

type statusCoder interface {
	StatusCode() int
}

var transientErrnos = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.ETIMEDOUT,
	syscall.EPIPE,
	syscall.EHOSTUNREACH,
	syscall.ENETUNREACH,
}

var transientMessages = []string{
	"econnreset",
	"etimedout",
	"econnrefused",
	"socket hang up",
	"connection reset",
	"broken pipe",
	"timeout",
	"timed out",
	"rate limit",
	"too many requests",
	"resource_exhausted",
	"unavailable",
	"overloaded",
	"temporarily unavailable",
	"internal server error",
	"bad gateway",
	"gateway timeout",
}

// IsTransient is the default retry predicate: connection resets and timeouts,
// HTTP 5xx/429/408, and known transient messages. Cancellation is never
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return RetryableStatus(sc.StatusCode())
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return RetryableStatus(apiErr.Code)
	}

	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= http.StatusInternalServerError && code <= 599:
		return true
	default:
		return false
	}
}

// StatusCode extracts an HTTP status from err, if it carries one.
func StatusCode(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code, true
	}
	return 0, false
}
