package api

import (
	"errors"
	"fmt"
)

// ErrConfigMissing is returned by every call when no base URL is configured.
var ErrConfigMissing = errors.New("API base URL is missing (set api.base_url or FARECAST_API_URL)")

// ErrUnexpectedResponse means a 2xx prediction reply had no numeric prediction.
var ErrUnexpectedResponse = errors.New("unexpected response from API")

// RequestError is a non-2xx reply from the remote service.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}
