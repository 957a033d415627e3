// Copyright (c) DevOps Wiz
// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrReadTimeout is the cancellation cause when the body stalls longer than Options.ReadTimeout.
var ErrReadTimeout = errors.New("read timeout: no data received")

// Ops reported in TransportError.Op.
const (
	OpRequest  = "request"
	OpStatus   = "status"
	OpReadBody = "read body"
)

// TransportError reports a failed transfer: connection or handshake failure,
// a non-success status, a timeout, or a broken body stream.
type TransportError struct {
	Op  string
	URL string
	// StatusCode and Status are set once a response was received.
	StatusCode int
	Status     string
	// Body is a bounded snippet of the error response body.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Op == OpStatus {
		msg := fmt.Sprintf("GET %s: unexpected HTTP status %s", e.URL, e.Status)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	}
	return fmt.Sprintf("GET %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a connect, handshake or read timeout.
func (e *TransportError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, ErrReadTimeout) || errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(e.Err, &nerr) && nerr.Timeout()
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
