// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/timeout"
	"github.com/gogama/httpdl/transport/throttle"
)

// RequestIDHeader is the header set by WithRequestID.
const RequestIDHeader = "X-Request-Id"

// A Session creates and runs download operations. It implements
// Manager. Session is safe for concurrent use by multiple goroutines.
type Session struct {
	doer             HTTPDoer
	logger           *slog.Logger
	timeout          timeout.Policy
	tempDir          string
	userAgent        string
	requestID        bool
	progress         bool
	startImmediately bool
}

// NewSession builds a Session from the given options.
func NewSession(optFns ...Option) (*Session, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying session option: %w", err)
		}
	}

	s := &Session{
		logger:           slog.Default(),
		timeout:          timeout.DefaultPolicy,
		tempDir:          os.TempDir(),
		userAgent:        opts.userAgent,
		requestID:        opts.requestID,
		progress:         opts.progress,
		startImmediately: true,
	}
	if opts.logger != nil {
		s.logger = opts.logger
	}
	if opts.timeout != nil {
		s.timeout = opts.timeout
	}
	if opts.tempDir != "" {
		s.tempDir = opts.tempDir
	}
	if opts.startImmediately != nil {
		s.startImmediately = *opts.startImmediately
	}

	if opts.doer != nil {
		if opts.client != nil || opts.rt != nil || opts.throttle != nil {
			return nil, errors.New("doer cannot be combined with client, transport or throttle options")
		}
		s.doer = opts.doer
		return s, nil
	}

	hc := &http.Client{}
	if opts.client != nil {
		*hc = *opts.client
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case hc.Transport != nil:
		rt = hc.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.throttle != nil {
		var err error
		rt, err = throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return s.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
	}
	hc.Transport = rt
	s.doer = hc

	return s, nil
}

// StartsImmediately implements Manager.
func (s *Session) StartsImmediately() bool {
	return s.startImmediately
}

// Download implements Manager. The returned operation is a *Download.
//
// If the template cannot be turned into a request plan, the operation
// has a nil request and ends with the plan error as soon as it starts.
func (s *Session) Download(ctx context.Context, t *request.Template, dst destination.Policy) Operation {
	if t == nil {
		panic("httpdl/transport: nil template")
	}
	d := s.newDownload(ctx, dst)

	p, err := t.Plan(d.ctx)
	if err != nil {
		d.initErr = urlErrorWrap(t.Method, t.URL, err)
	} else {
		d.exec.Plan = p
		d.req = p.ToRequest()
		s.decorate(d.req)
	}

	return s.start(d)
}

// DownloadResuming implements Manager. The returned operation is a
// *Download.
//
// If resumeData is not a valid resume token, the operation has a nil
// request and ends with an error wrapping ErrInvalidResumeData as soon
// as it starts.
func (s *Session) DownloadResuming(ctx context.Context, resumeData []byte, dst destination.Policy) Operation {
	d := s.newDownload(ctx, dst)

	tok, err := decodeResumeToken(resumeData)
	if err != nil {
		d.initErr = urlErrorWrap(http.MethodGet, "", err)
		return s.start(d)
	}

	d.resume = tok
	d.req, err = tok.request(d.ctx)
	if err != nil {
		d.initErr = urlErrorWrap(http.MethodGet, tok.URL, err)
		d.req = nil
		return s.start(d)
	}
	s.decorate(d.req)
	d.exec.ResumeOffset = tok.Offset

	return s.start(d)
}

// CloseIdleConnections invokes the same method on the session's
// underlying HTTPDoer, if it has one.
func (s *Session) CloseIdleConnections() {
	if ic, ok := s.doer.(interface{ CloseIdleConnections() }); ok {
		ic.CloseIdleConnections()
	}
}

func (s *Session) newDownload(ctx context.Context, dst destination.Policy) *Download {
	if ctx == nil {
		panic("httpdl/transport: nil context")
	}
	if dst == nil {
		dst = destination.Temporary()
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Download{
		session: s,
		ctx:     ctx,
		cancel:  cancel,
		policy:  dst,
		exec:    &request.Execution{},
		done:    make(chan struct{}),
	}
	d.total.Store(-1)
	return d
}

func (s *Session) start(d *Download) Operation {
	d.exec.Request = d.req
	if s.startImmediately {
		d.Resume()
	}
	return d
}

func (s *Session) decorate(r *http.Request) {
	if s.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", s.userAgent)
	}
	if s.requestID && r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}
}

func urlErrorWrap(method, rawURL string, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: rawURL,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
