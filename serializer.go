// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"github.com/gogama/httpdl/request"
)

// A Result is the provisional output of a ResponseSerializer: a model
// value, a parse error, or neither.
type Result[M any] struct {
	value M
	ok    bool
	err   error
}

// Succeeded returns a result carrying v.
func Succeeded[M any](v M) Result[M] {
	return Result[M]{value: v, ok: true}
}

// Failed returns a result carrying no value and the parse error err.
func Failed[M any](err error) Result[M] {
	return Result[M]{err: err}
}

// Empty returns a result carrying neither a value nor an error.
func Empty[M any]() Result[M] {
	return Result[M]{}
}

// Value returns the value and true if the result carries one.
func (r Result[M]) Value() (M, bool) {
	return r.value, r.ok
}

// Err returns the parse error, if any.
func (r Result[M]) Err() error {
	return r.err
}

// A ResponseSerializer turns the raw artifacts of a completed download
// into a model value. It is only called when the transport reported no
// error. Serializers run on the transport's goroutine and must not
// block on the client's dispatchers.
type ResponseSerializer[M any] interface {
	SerializeResponse(e *request.Execution) Result[M]
}

// The ResponseSerializerFunc type is an adapter to allow the use of
// ordinary functions as response serializers.
type ResponseSerializerFunc[M any] func(e *request.Execution) Result[M]

// SerializeResponse calls f(e).
func (f ResponseSerializerFunc[M]) SerializeResponse(e *request.Execution) Result[M] {
	return f(e)
}

// An ErrorSerializer builds the unified error of a failed request.
//
// Parameter prior is nil if the transport reported an error, in which
// case the response serializer was never called. Otherwise it points to
// the valueless result the response serializer produced.
//
// If SerializeError returns nil, the failure is reported as a transport
// error wrapping e.Err, the prior result's error, or ErrNoValue, in
// that order of preference.
type ErrorSerializer[M, E any] interface {
	SerializeError(prior *Result[M], e *request.Execution) *Error[E]
}

// The ErrorSerializerFunc type is an adapter to allow the use of
// ordinary functions as error serializers.
type ErrorSerializerFunc[M, E any] func(prior *Result[M], e *request.Execution) *Error[E]

// SerializeError calls f(prior, e).
func (f ErrorSerializerFunc[M, E]) SerializeError(prior *Result[M], e *request.Execution) *Error[E] {
	return f(prior, e)
}

// A Serializer is a matched response and error serializer pair.
type Serializer[M, E any] interface {
	ResponseSerializer[M]
	ErrorSerializer[M, E]
}

// Pair combines separate response and error serializers.
func Pair[M, E any](rs ResponseSerializer[M], es ErrorSerializer[M, E]) Serializer[M, E] {
	if rs == nil || es == nil {
		panic("httpdl: nil serializer")
	}

	return pair[M, E]{rs, es}
}

type pair[M, E any] struct {
	ResponseSerializer[M]
	ErrorSerializer[M, E]
}

// TransportErrors is an error serializer which never parses a domain
// payload: every failure becomes a transport error.
func TransportErrors[M, E any]() ErrorSerializer[M, E] {
	return ErrorSerializerFunc[M, E](func(prior *Result[M], e *request.Execution) *Error[E] {
		return NewTransportError[E](failureCause(prior, e), e)
	})
}

// failureCause picks the error explaining a failure without a domain
// payload.
func failureCause[M any](prior *Result[M], e *request.Execution) error {
	if e != nil && e.Err != nil {
		return e.Err
	}
	if prior != nil && prior.Err() != nil {
		return prior.Err()
	}
	return ErrNoValue
}
