// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Manager creates transport operations.
//
// Session is the standard Manager. Implementations must be safe for
// concurrent use by multiple goroutines.
type Manager interface {
	// StartsImmediately reports whether operations returned by the
	// manager are already running. If it returns false, callers must
	// call Resume on each operation to start it.
	StartsImmediately() bool

	// Download creates an operation which downloads the resource
	// described by t and places it using dst.
	Download(ctx context.Context, t *request.Template, dst destination.Policy) Operation

	// DownloadResuming creates an operation which continues the
	// interrupted download described by resumeData and places the
	// completed file using dst.
	DownloadResuming(ctx context.Context, resumeData []byte, dst destination.Policy) Operation
}

// An Operation is the live handle to a transport operation.
type Operation interface {
	// Request returns the HTTP request the operation sends, or nil if
	// no request could be built.
	Request() *http.Request
	// Resume starts the operation if it has not been started. It has
	// no effect on an operation which is already running or has ended.
	Resume()
	// Cancel cancels the operation. A download cancelled while its
	// body is being received may produce resume data.
	Cancel()
	// Done returns a channel which is closed once the operation has
	// ended and its completion handlers have run.
	Done() <-chan struct{}
}

// A DownloadOperation is an Operation which downloads a response body
// to a file.
type DownloadOperation interface {
	Operation

	// Validate adds validators which check the execution after the
	// downloaded file has been placed. With no arguments, the default
	// validators are added: see DefaultValidators.
	//
	// Validators run once the operation has ended, before its
	// completion handlers. Validators added after the operation has
	// ended run at once, so handlers added afterwards observe them.
	// Validators must not call back into the operation.
	Validate(vs ...Validator)

	// OnComplete adds a handler called with the final execution once
	// the operation has ended. Handlers run in the order added. A
	// handler added after the operation has ended is called at once.
	OnComplete(h func(e *request.Execution))

	// ResumeData returns the token needed to resume an interrupted
	// download, or nil if the operation has not ended, completed
	// normally, or could not be resumed.
	ResumeData() []byte

	// Progress returns the number of bytes received so far.
	Progress() Progress
}

// Progress describes how much of a download has been received.
type Progress struct {
	// Received is the number of body bytes in the download file,
	// including bytes carried over from a resumed download.
	Received int64
	// Total is the expected size of the complete file, or -1 if the
	// server did not announce it.
	Total int64
}

// Fraction returns the completed fraction in the range [0, 1], or -1
// if the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total < 0 {
		return -1
	}
	if p.Total == 0 {
		return 1
	}
	return float64(p.Received) / float64(p.Total)
}
