package openf1

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError is returned when a request never produced an HTTP response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Cause() error {
	return e.Err
}

// RemoteError is returned for any non-2xx response.
type RemoteError struct {
	StatusCode int
	StatusText string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.StatusText)
}

// NotFoundError is returned when a successful response holds no matching record.
type NotFoundError struct {
	Resource string
	Query    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %s", e.Resource, e.Query)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
