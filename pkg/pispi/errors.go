package pispi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors. Use errors.Is to classify errors returned by the client.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation error")
	ErrAuth            = errors.New("authentication error")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrRateLimit       = errors.New("rate limited")
	ErrAPI             = errors.New("api error")
	ErrTransport       = errors.New("transport error")
)

// ErrorKind classifies an APIError.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindForbidden  ErrorKind = "forbidden"
	KindNotFound   ErrorKind = "not_found"
	KindRateLimit  ErrorKind = "rate_limit"
	KindAPI        ErrorKind = "api"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindAuth:
		return ErrAuth
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindRateLimit:
		return ErrRateLimit
	default:
		return ErrAPI
	}
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindAPI
	}
}

// HTTPError is an unclassified non-2xx response.
type HTTPError struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.Status, e.statusText())
}

func (e *HTTPError) statusText() string {
	if e.StatusText != "" {
		return e.StatusText
	}
	return http.StatusText(e.Status)
}

// APIError is a classified HTTP failure.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Body is the raw response body.
	Body []byte
	// RetryAfter is the server-requested delay, zero when absent.
	RetryAfter time.Duration

	cause *HTTPError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pispi %s error (%d): %s", e.Kind, e.Status, e.Message)
}

// Is reports whether target is the sentinel of e's kind.
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *APIError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// TransportError wraps a failure that happened before a response was received.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Cause)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Cause }

// MapError classifies an error wrapping an *HTTPError into an *APIError. Any other
// error, nil included, is returned unchanged.
func MapError(err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}

	return &APIError{
		Kind:       KindForStatus(httpErr.Status),
		Status:     httpErr.Status,
		Message:    errorMessage(httpErr),
		Body:       httpErr.Body,
		RetryAfter: retryAfter(httpErr.Header),
		cause:      httpErr,
	}
}

// errorMessage picks detail, then message, then title from a JSON body and falls
// back to the status text.
func errorMessage(e *HTTPError) string {
	var body map[string]any
	if len(e.Body) > 0 && json.Unmarshal(e.Body, &body) == nil {
		for _, key := range []string{"detail", "message", "title"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return e.statusText()
}

func retryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
