// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"errors"
	"fmt"

	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/transient"
)

// ErrNoValue is the cause of a failure for which neither the transport
// nor the serializers supplied an error.
var ErrNoValue = errors.New("httpdl: response serializer produced no value")

// An Error is the unified failure of a performed request. It holds
// exactly one of:
//
// • a domain payload of type E, parsed from a response the server sent
// (see NewDomainError); or
//
// • a transport error, for failures that produced no domain payload,
// such as connectivity problems, timeouts, validation failures and
// parse failures (see NewTransportError).
type Error[E any] struct {
	payload    E
	hasPayload bool
	err        error
	exec       *request.Execution
}

// NewDomainError returns an error carrying payload. Parameter e is the
// execution the payload was parsed from, and may be nil.
func NewDomainError[E any](payload E, e *request.Execution) *Error[E] {
	return &Error[E]{payload: payload, hasPayload: true, exec: e}
}

// NewTransportError returns an error carrying err, which may not be nil.
// Parameter e is the execution that failed, and may be nil.
func NewTransportError[E any](err error, e *request.Execution) *Error[E] {
	if err == nil {
		panic("httpdl: nil transport error")
	}

	return &Error[E]{err: err, exec: e}
}

// valid reports whether err was built by one of the constructors.
func (err *Error[E]) valid() bool {
	return err.hasPayload != (err.err != nil)
}

// Payload returns the domain payload and true, or the zero value and
// false for a transport error.
func (err *Error[E]) Payload() (E, bool) {
	return err.payload, err.hasPayload
}

// IsDomain reports whether err carries a domain payload.
func (err *Error[E]) IsDomain() bool {
	return err.hasPayload
}

// Execution returns the raw transport artifacts of the failed request,
// or nil if none are available.
func (err *Error[E]) Execution() *request.Execution {
	return err.exec
}

// StatusCode returns the HTTP status code of the response, or 0 if no
// response was received.
func (err *Error[E]) StatusCode() int {
	if err.exec == nil {
		return 0
	}

	return err.exec.StatusCode()
}

// Error implements the error interface.
func (err *Error[E]) Error() string {
	if err.hasPayload {
		return fmt.Sprintf("httpdl: domain error (status %d): %+v", err.StatusCode(), err.payload)
	}

	return fmt.Sprintf("httpdl: %v", err.err)
}

// Unwrap returns the transport error, or nil for a domain error.
func (err *Error[E]) Unwrap() error {
	return err.err
}

// Timeout indicates whether the transport error is a timeout.
func (err *Error[E]) Timeout() bool {
	return err.Category() == transient.Timeout
}

// Category returns the transient category of the transport error. It is
// transient.Not for domain errors.
func (err *Error[E]) Category() transient.Category {
	return transient.Categorize(err.err)
}
