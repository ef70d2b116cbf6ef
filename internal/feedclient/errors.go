// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feedclient

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks by callers.
	ErrUnavailable = errors.New("feed: host unreachable or transport failure")
	ErrUpstream    = errors.New("feed: upstream returned an error status")
	ErrBadResponse = errors.New("feed: invalid response format or malformed data")
	ErrTimeout     = errors.New("feed: request timed out")
)

// FetchError wraps a sentinel with request context.
type FetchError struct {
	Sentinel error
	URL      string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("feedclient: GET %s: %v", e.URL, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Sentinel
}

// Reason is a short metric label for err.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "other"
	}
}
