// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/transport"
)

// A DownloadRequest is a typed download request. M is the model type a
// successful download produces, and E is the domain error payload type
// a failed one may produce.
//
// A DownloadRequest is configured through its fields, performed at most
// once, and discarded after its completion has been delivered.
type DownloadRequest[M, E any] struct {
	// Intent is either Fresh or Resuming.
	Intent Intent
	// Path is turned into the request URL by the client's URLBuilder.
	// It is ignored when resuming.
	Path string
	// Method is the HTTP method. An empty string means GET. It is
	// ignored when resuming.
	Method string
	// Params are encoded into the request by Encoding. They are
	// ignored when resuming.
	Params request.Params
	// Encoding encodes Params. If nil, request.DefaultEncoding is used.
	Encoding request.Encoding
	// Body is an optional request body: nil, a string, a []byte, or an
	// io.Reader. An encoding that writes Params into the body replaces
	// it. It is ignored when resuming.
	Body interface{}
	// Header holds request-specific headers, composed with the client
	// headers by the client's HeaderBuilder. It is ignored when
	// resuming.
	Header http.Header
	// Auth states whether the request carries credentials.
	Auth AuthorizationRequirement
	// Plugins are notified before the client-wide plugins.
	Plugins Plugins
	// Stub optionally short-circuits the request.
	Stub *Stub[M, E]
	// ResponseSerializer produces the model value of a download the
	// transport completed without error.
	ResponseSerializer ResponseSerializer[M]
	// ErrorSerializer produces the error of a failed download.
	ErrorSerializer ErrorSerializer[M, E]
	// Client performs the request. The request does not own it.
	Client *Client
}

// NewDownload returns a request to download path from scratch, placing
// the file with dst and parsing it with s.
func NewDownload[M, E any](c *Client, path string, dst destination.Policy, s Serializer[M, E]) *DownloadRequest[M, E] {
	return &DownloadRequest[M, E]{
		Intent:             Fresh{Destination: dst},
		Path:               path,
		ResponseSerializer: s,
		ErrorSerializer:    s,
		Client:             c,
	}
}

// NewResumingDownload returns a request to continue the interrupted
// download described by resumeData, placing the completed file with
// dst and parsing it with s.
func NewResumingDownload[M, E any](c *Client, resumeData []byte, dst destination.Policy, s Serializer[M, E]) *DownloadRequest[M, E] {
	return &DownloadRequest[M, E]{
		Intent:             Resuming{ResumeData: resumeData, Destination: dst},
		ResponseSerializer: s,
		ErrorSerializer:    s,
		Client:             c,
	}
}

// Perform runs the request and arranges for completion to be called
// exactly once with its outcome. It returns the live transport
// operation, or nil if the request is stubbed.
//
// Plugins see WillSendRequest before Perform returns. Once the
// transport operation completes, plugins see DidReceiveResponse on the
// client's Main dispatcher, and then completion is called on the
// client's Delivery dispatcher.
//
// Perform panics if completion is nil, or if a request which is not
// stubbed has no client, no manager, no serializers, or a manager which
// returns an operation that is not a transport.DownloadOperation.
func (r *DownloadRequest[M, E]) Perform(ctx context.Context, completion func(Outcome[M, E])) transport.DownloadOperation {
	if completion == nil {
		panic("httpdl: nil completion")
	}

	c := r.Client
	if r.stubbed() {
		if c != nil {
			c.logger().Debug("download request stubbed", "path", r.Path, "delay", r.Stub.Delay)
		}
		r.Stub.deliver(c.delivery, completion)
		return nil
	}

	if c == nil {
		panic("httpdl: nil client")
	}
	if c.Manager == nil {
		panic("httpdl: nil manager")
	}
	if r.ResponseSerializer == nil || r.ErrorSerializer == nil {
		panic("httpdl: nil serializer")
	}

	op := r.operation(ctx, c)
	if !c.Manager.StartsImmediately() {
		op.Resume()
	}

	plugins := merge(r.Plugins, c.Plugins)
	plugins.willSendRequest(op.Request())

	main, delivery, logger := c.main(), c.delivery(), c.logger()
	op.Validate()
	op.OnComplete(func(e *request.Execution) {
		main.Dispatch(func() {
			plugins.didReceiveResponse(e.Request, e.Response, e.Err)
		})
		outcome := r.resolve(e)
		logger.Debug("download request completed",
			"path", r.Path,
			"status", e.StatusCode(),
			"success", outcome.IsSuccess(),
			"duration", e.Duration(),
		)
		main.Dispatch(func() {
			delivery.Dispatch(func() {
				completion(outcome)
			})
		})
	})

	return op
}

// PerformFunc is a convenience wrapper around Perform which calls
// onSuccess with the model value of a success, or onFailure with the
// error of a failure. Either function may be nil.
func (r *DownloadRequest[M, E]) PerformFunc(ctx context.Context, onSuccess func(M), onFailure func(*Error[E])) transport.DownloadOperation {
	return r.Perform(ctx, func(o Outcome[M, E]) {
		if v, ok := o.Value(); ok {
			if onSuccess != nil {
				onSuccess(v)
			}
		} else if onFailure != nil {
			onFailure(o.Err())
		}
	})
}

func (r *DownloadRequest[M, E]) stubbed() bool {
	if r.Stub == nil {
		return false
	}

	return r.Stub.Enabled || (r.Client != nil && r.Client.Stubbing)
}

func (r *DownloadRequest[M, E]) operation(ctx context.Context, c *Client) transport.DownloadOperation {
	var op transport.Operation
	switch intent := r.Intent.(type) {
	case Fresh:
		op = c.Manager.Download(ctx, &request.Template{
			URL:      c.url(r.Path),
			Method:   r.Method,
			Params:   r.Params,
			Encoding: r.Encoding,
			Header:   c.headers(r.Auth, r.Header),
			Body:     r.Body,
		}, intent.Destination)
	case Resuming:
		op = c.Manager.DownloadResuming(ctx, intent.ResumeData, intent.Destination)
	default:
		panic(fmt.Sprintf("httpdl: unknown intent %T", r.Intent))
	}

	dop, ok := op.(transport.DownloadOperation)
	if !ok {
		panic(fmt.Sprintf("httpdl: manager returned %T, not a download operation", op))
	}
	return dop
}

// resolve turns the raw execution into an outcome. A transport error
// always produces a failure, even if the response could be parsed.
func (r *DownloadRequest[M, E]) resolve(e *request.Execution) Outcome[M, E] {
	if e.Err != nil {
		return Failure[M, E](r.serializeError(nil, e))
	}

	result := r.ResponseSerializer.SerializeResponse(e)
	if v, ok := result.Value(); ok {
		return Success[M, E](v)
	}

	return Failure[M, E](r.serializeError(&result, e))
}

func (r *DownloadRequest[M, E]) serializeError(prior *Result[M], e *request.Execution) *Error[E] {
	if err := r.ErrorSerializer.SerializeError(prior, e); err != nil && err.valid() {
		return err
	}

	return NewTransportError[E](failureCause(prior, e), e)
}
