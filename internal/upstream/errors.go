// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamStatus      = errors.New("upstream: unexpected HTTP status")
	ErrTimeout             = errors.New("upstream: request timed out")
	ErrBadResponse         = errors.New("upstream: invalid response format or malformed data")
	ErrNoData              = errors.New("upstream: no data returned")
)

// FetchError wraps a sentinel with the operation that failed.
type FetchError struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // underlying cause, e.g. a net.Error or parse error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// Classify maps a transport error from http.Client.Do onto a FetchError.
func Classify(op string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	sentinel := ErrUpstreamUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		sentinel = ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		sentinel = ErrTimeout
	}
	return &FetchError{Sentinel: sentinel, Operation: op, Err: err}
}

// IsTimeout reports whether err is a classified timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
