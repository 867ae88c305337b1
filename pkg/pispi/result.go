package pispi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the outcome of a single HTTP exchange. It is one of ResultOK,
// ResultHTTPError or ResultTransportError; callers switch on the concrete type.
type Result interface {
	// Err returns nil for ResultOK and the mapped error otherwise.
	Err() error
	isResult()
}

// ResultOK is a 2xx response.
type ResultOK struct {
	Status int
	Header http.Header
	Body   []byte
}

// ResultHTTPError is a response with a non-2xx status.
type ResultHTTPError struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

// ResultTransportError is a failure before any response was received.
type ResultTransportError struct {
	Cause error
}

func (ResultOK) isResult()             {}
func (ResultHTTPError) isResult()      {}
func (ResultTransportError) isResult() {}

func (r ResultOK) Err() error { return nil }

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r ResultOK) Decode(v any) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func (r ResultHTTPError) Err() error {
	return MapError(&HTTPError{
		Status:     r.Status,
		StatusText: r.StatusText,
		Header:     r.Header,
		Body:       r.Body,
	})
}

func (r ResultTransportError) Err() error {
	return &TransportError{Cause: r.Cause}
}
