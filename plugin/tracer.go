// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// SpanName is the name of the spans started by a Tracer.
const SpanName = "httpdl.download"

// A Tracer is a plugin which records one OpenTelemetry span per
// download request, started on WillSendRequest and ended on
// DidReceiveResponse. Requests the transport could not build are not
// traced.
type Tracer struct {
	tracer trace.Tracer
	spans  sync.Map // *http.Request -> trace.Span
}

// NewTracer returns a plugin which records spans with tracer. If tracer
// is nil, a no-op tracer is used.
func NewTracer(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Tracer{tracer: tracer}
}

// WillSendRequest implements httpdl.Plugin.
func (t *Tracer) WillSendRequest(r *http.Request) {
	if r == nil {
		return
	}

	_, span := t.tracer.Start(r.Context(), SpanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("url.full", r.URL.String()),
	)
	if rng := r.Header.Get("Range"); rng != "" {
		span.SetAttributes(attribute.String("http.request.header.range", rng))
	}
	t.spans.Store(r, span)
}

// DidReceiveResponse implements httpdl.Plugin.
func (t *Tracer) DidReceiveResponse(r *http.Request, resp *http.Response, _ []byte, err error) {
	if r == nil {
		return
	}

	v, ok := t.spans.LoadAndDelete(r)
	if !ok {
		return
	}

	span := v.(trace.Span)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Pending returns the number of requests whose spans have started but
// not ended.
func (t *Tracer) Pending() int {
	var n int
	t.spans.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
