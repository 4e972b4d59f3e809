// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrNotFound matches, via errors.Is, any TransportError for a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrMissingID is returned when an operation addressed by identifier is
	// given a new record.
	ErrMissingID = errors.New("the record has no identifier")

	// ErrStreamClosed is returned by Stream.Submit after the stream is closed.
	ErrStreamClosed = errors.New("the stream is closed")

	// ErrInvalidBaseURL is returned by New when the configured base URL is
	// missing or is not an absolute URL.
	ErrInvalidBaseURL = errors.New("the base URL must be an absolute URL")
)

// maxErrorBody caps how much of a failed response's body is retained.
const maxErrorBody = 64 * 1024

// TransportError describes a request that either received a non-2xx response
// or failed before any response arrived.  In the latter case, StatusCode is 0
// and Err holds the cause.
type TransportError struct {
	// Method is the HTTP method of the failed request.
	Method string

	// URL is the target of the failed request.
	URL string

	// StatusCode is the response status, or 0 for network failures.
	StatusCode int

	// Status is the response reason phrase, e.g. "Not Found".
	Status string

	// Body is the start of the response body, if any.
	Body []byte

	// Err is the underlying network error, if any.
	Err error
}

func newResponseError(request *http.Request, response *http.Response) *TransportError {
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	return &TransportError{
		Method:     request.Method,
		URL:        request.URL.String(),
		StatusCode: response.StatusCode,
		Status:     reasonPhrase(response),
		Body:       body,
	}
}

func newNetworkError(request *http.Request, err error) *TransportError {
	return &TransportError{
		Method: request.Method,
		URL:    request.URL.String(),
		Status: "Unknown Error",
		Err:    err,
	}
}

// reasonPhrase extracts the text after the status code in the status line,
// falling back to the standard text for the code.
func reasonPhrase(response *http.Response) string {
	code := strconv.Itoa(response.StatusCode)
	if s := strings.TrimSpace(strings.TrimPrefix(response.Status, code)); len(s) > 0 {
		return s
	}

	return http.StatusText(response.StatusCode)
}

func (te *TransportError) Error() string {
	if te.Err != nil {
		return fmt.Sprintf("%s %s: %s", te.Method, te.URL, te.Err)
	}

	return fmt.Sprintf("%s %s: %d %s", te.Method, te.URL, te.StatusCode, te.Status)
}

// Unwrap exposes the network error, if any.
func (te *TransportError) Unwrap() error {
	return te.Err
}

// Is allows errors.Is(err, ErrNotFound) for 404 responses.
func (te *TransportError) Is(target error) bool {
	return target == ErrNotFound && te.StatusCode == http.StatusNotFound
}

// FieldErrors decodes a validation failure body of the form
// {"title": ["can't be blank"]}.  It returns nil if the body has any other shape.
func (te *TransportError) FieldErrors() map[string][]string {
	if len(te.Body) == 0 {
		return nil
	}

	var fe map[string][]string
	if err := json.Unmarshal(te.Body, &fe); err != nil {
		return nil
	}

	return fe
}

// IsNotFound tests if err reports that a remote resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// TransportError or carries no response.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}

	return 0
}
