// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

// An Outcome is the terminal result of a performed request: either a
// success carrying a model value, or a failure carrying an *Error.
//
// The zero value is a success carrying the zero model value.
type Outcome[M, E any] struct {
	value M
	err   *Error[E]
}

// Success returns a successful outcome carrying v.
func Success[M, E any](v M) Outcome[M, E] {
	return Outcome[M, E]{value: v}
}

// Failure returns a failed outcome carrying err, which may not be nil.
func Failure[M, E any](err *Error[E]) Outcome[M, E] {
	if err == nil {
		panic("httpdl: nil failure error")
	}

	return Outcome[M, E]{err: err}
}

// IsSuccess reports whether the outcome is a success.
func (o Outcome[M, E]) IsSuccess() bool {
	return o.err == nil
}

// Value returns the model value and true for a success, or the zero
// value and false for a failure.
func (o Outcome[M, E]) Value() (M, bool) {
	if o.err != nil {
		var zero M
		return zero, false
	}

	return o.value, true
}

// Err returns the error of a failure, or nil for a success.
func (o Outcome[M, E]) Err() *Error[E] {
	return o.err
}
