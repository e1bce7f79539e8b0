// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/httpdl/transient"
)

// An Execution holds the raw artifacts of a single download operation:
// the request that was sent, the response metadata received, the
// location the downloaded bytes were moved to, and the error, if any.
//
// A transport creates one Execution per operation and hands it to the
// operation's completion handlers once the operation has ended.
// Handlers should treat the exported fields as immutable.
type Execution struct {
	// Plan specifies the HTTP request plan that was executed. It is nil
	// if the plan could not be built or if the operation resumed a
	// previous download from resume data.
	Plan *Plan

	// Start is the time the operation started sending its request.
	Start time.Time

	// End is the time the operation ended. It contains the zero value
	// until the operation has ended.
	End time.Time

	// Request is the HTTP request that was sent. It is nil only if the
	// request could not be built.
	Request *http.Request

	// Response is the HTTP response metadata received. The body has
	// already been consumed into the download file. It is nil if the
	// request ended in error before a response arrived.
	Response *http.Response

	// Location is where the destination policy placed the downloaded
	// file, or the empty string if no file was placed.
	Location string

	// Err indicates the error that ended the operation, if any. A
	// transport failure, a cancellation, a destination failure or a
	// validation failure all set Err.
	Err error

	// BytesWritten is the number of body bytes written by this
	// operation, not counting bytes carried over from a resumed
	// download.
	BytesWritten int64

	// ResumeOffset is the number of bytes carried over from a previous,
	// interrupted download. It is zero for fresh downloads and for
	// resumptions the server refused to continue.
	ResumeOffset int64

	// data contains arbitrary user data. Handlers may interact with it
	// via the Value and SetValue methods.
	data context.Context
}

// StatusCode returns the status code of the HTTP response. If there is
// no HTTP response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Resumed indicates whether the download continued from bytes written
// by an earlier, interrupted download.
func (e *Execution) Resumed() bool {
	return e.ResumeOffset > 0
}

// Size returns the total size of the downloaded file, including bytes
// carried over from a resumed download.
func (e *Execution) Size() int64 {
	return e.ResumeOffset + e.BytesWritten
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Canceled indicates whether Err indicates the operation was cancelled,
// either through its live handle or through its context.
func (e *Execution) Canceled() bool {
	return transient.Categorize(e.Err) == transient.Canceled
}

// SetValue allows handlers to store arbitrary data in the execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different handlers putting data into the same
// execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
