package models

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when an action requires brand, product or
// mapping context that has not been selected yet. No network call is made
// when this error is raised.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

// InvalidURLError is returned when a site base URL cannot be parsed as an
// absolute URL.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid site base URL %q: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("invalid site base URL %q", e.URL)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// FetchError is returned when a collaborator GET responds with a non-2xx
// status.
type FetchError struct {
	Endpoint string
	Status   int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.Endpoint, e.Status)
}

// ExportRejectedError is returned when the export POST responds with a
// non-2xx status. Body carries the response body text for the operator.
type ExportRejectedError struct {
	Status int
	Body   string
}

func (e *ExportRejectedError) Error() string {
	return fmt.Sprintf("export rejected with status %d: %s", e.Status, e.Body)
}
