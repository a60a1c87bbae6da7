package stowgate

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when an object or key does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when a request key is malformed
	ErrInvalidInput = errors.New("invalid input")
	// ErrRangeNotSatisfiable is returned when a range lies outside the object
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	// ErrMethodNotAllowed is returned for methods other than GET and HEAD
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrPeerGone is returned when the client went away mid-request
	ErrPeerGone = errors.New("peer gone")
	// ErrPoolNotFound is returned when a location names a pool the registry does not hold
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolConflict is returned when one pool name is bound to different backends
	ErrPoolConflict = errors.New("conflicting pool binding")
)

// StatusFor maps an error returned by the gateway to the HTTP status reported to the client.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRangeNotSatisfiable):
		return http.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
