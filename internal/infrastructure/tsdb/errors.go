package tsdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for time-series database operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, tsdb.ErrTransport) {
//	    // The request never produced a response
//	}
var (
	// ErrInvalidURL indicates a base URL that cannot be used.
	ErrInvalidURL = errors.New("tsdb: invalid base url")

	// ErrTransport indicates the request failed before a full response was read.
	ErrTransport = errors.New("tsdb: transport error")

	// ErrResponseTooLarge indicates a response body over the buffering limit.
	// It is always wrapped together with ErrTransport, since the response
	// was not read in full.
	ErrResponseTooLarge = errors.New("tsdb: response body too large")

	// ErrDecode indicates a response body that could not be decoded.
	ErrDecode = errors.New("tsdb: undecodable response")

	// ErrRejected indicates the server answered with a non-success status.
	// The concrete error is a *RejectedError.
	ErrRejected = errors.New("tsdb: rejected by database")

	// ErrRowMismatch indicates a series row whose length differs from its
	// column count. Only reported under RowsStrict.
	ErrRowMismatch = errors.New("tsdb: row length does not match columns")
)

// RejectedError carries the message the database returned with a
// non-success status.
type RejectedError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("tsdb: rejected by database (HTTP %d): %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
