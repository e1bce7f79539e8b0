// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/request"
)

type state int

const (
	idle state = iota
	running
	ended
)

// A Download is a single download operation created by a Session. It
// implements DownloadOperation.
type Download struct {
	session *Session
	ctx     context.Context
	cancel  context.CancelFunc
	policy  destination.Policy
	req     *http.Request
	resume  *resumeToken
	initErr error
	exec    *request.Execution
	done    chan struct{}

	received atomic.Int64
	total    atomic.Int64

	mu         sync.Mutex
	state      state
	validators []Validator
	handlers   []func(*request.Execution)
	resumeData []byte
}

// Request implements Operation.
func (d *Download) Request() *http.Request {
	return d.req
}

// Resume implements Operation.
func (d *Download) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != idle {
		return
	}
	d.state = running
	go d.run()
}

// Cancel implements Operation. Cancelling an operation which has not
// been started also starts it, so that it ends with a cancellation
// error and its handlers run.
func (d *Download) Cancel() {
	d.cancel()
	d.Resume()
}

// Done implements Operation.
func (d *Download) Done() <-chan struct{} {
	return d.done
}

// Validate implements DownloadOperation.
func (d *Download) Validate(vs ...Validator) {
	if len(vs) == 0 {
		vs = DefaultValidators()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.validators = append(d.validators, vs...)
	if d.state == ended {
		d.validate(vs)
	}
}

// OnComplete implements DownloadOperation.
func (d *Download) OnComplete(h func(e *request.Execution)) {
	if h == nil {
		panic("httpdl/transport: nil completion handler")
	}

	d.mu.Lock()
	if d.state != ended {
		d.handlers = append(d.handlers, h)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	h(d.exec)
}

// ResumeData implements DownloadOperation.
func (d *Download) ResumeData() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.resumeData
}

// Progress implements DownloadOperation.
func (d *Download) Progress() Progress {
	return Progress{Received: d.received.Load(), Total: d.total.Load()}
}

func (d *Download) run() {
	e := d.exec
	logger := d.session.logger

	var tok *resumeToken
	defer func() {
		e.End = time.Now()
		d.finish(tok)
	}()

	e.Start = time.Now()
	if d.initErr != nil {
		e.Err = d.initErr
		return
	}

	ctx := d.ctx
	if limit := d.session.timeout.Timeout(e); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		e.Err = d.wrap(err)
		tok = d.resume
		return
	}

	logger.Debug("download started", "url", d.req.URL.String(), "resume_offset", e.ResumeOffset)

	resp, err := d.session.doer.Do(d.req.WithContext(ctx))
	if err != nil {
		e.Err = d.wrap(err)
		tok = d.resume
		logger.Debug("download failed", "url", d.req.URL.String(), "error", err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	e.Response = resp

	tok, e.Err = d.receive(ctx, resp)
	if e.Err != nil {
		logger.Debug("download failed", "url", d.req.URL.String(), "status", resp.StatusCode, "error", e.Err)
		return
	}

	logger.Debug("download finished",
		"url", d.req.URL.String(),
		"status", resp.StatusCode,
		"location", e.Location,
		"bytes", e.BytesWritten,
		"resume_offset", e.ResumeOffset,
		"duration", time.Since(e.Start).Round(time.Millisecond),
	)
}

// receive spools the response body, places the file and validates the
// result. On an interrupted transfer it returns a resume token
// alongside the error.
func (d *Download) receive(ctx context.Context, resp *http.Response) (*resumeToken, error) {
	e := d.exec

	if d.refused(resp) {
		d.session.logger.Debug("server refused resumed download", "url", d.req.URL.String(), "status", resp.StatusCode)
		return d.resume, d.wrap(&ValidationError{
			Err:    ErrUnacceptableStatusCode,
			Detail: fmt.Sprintf("status %d resuming at byte %d", resp.StatusCode, d.resume.Offset),
		})
	}

	file, err := d.openTarget(resp)
	if err != nil {
		return nil, d.wrap(err)
	}

	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			d.session.logger.Error("closing temp file", "error", err)
		}
	}()

	expected := resp.ContentLength
	if expected >= 0 {
		d.total.Store(e.ResumeOffset + expected)
	}
	d.received.Store(e.ResumeOffset)

	var w io.Writer = &countingWriter{w: file, n: &d.received}
	if d.session.progress {
		w = &progressWriter{
			w:           w,
			logger:      d.session.logger,
			transferred: e.ResumeOffset,
			total:       d.Progress().Total,
			startTime:   time.Now(),
		}
	}

	n, err := io.Copy(w, &contextReader{ctx: ctx, r: resp.Body})
	e.BytesWritten = n
	if err != nil {
		tok := newResumeToken(d.req, resp, file.Name(), e.ResumeOffset+n, d.Progress().Total)
		if tok == nil {
			d.discard(file.Name())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tok, d.wrap(ctxErr)
		}
		return tok, d.wrap(fmt.Errorf("copying body: %w", err))
	}

	if expected >= 0 && n != expected {
		d.discard(file.Name())
		return nil, d.wrap(&ValidationError{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", expected, n),
		})
	}

	if err = file.Sync(); err != nil {
		d.discard(file.Name())
		return nil, d.wrap(fmt.Errorf("syncing temp file: %w", err))
	}
	if err = file.Close(); err != nil {
		d.discard(file.Name())
		return nil, d.wrap(fmt.Errorf("closing temp file: %w", err))
	}

	e.Location, err = d.policy.Place(ctx, file.Name(), resp)
	if err != nil {
		e.Location = ""
		d.discard(file.Name())
		return nil, d.wrap(err)
	}

	return nil, nil
}

// refused reports whether resp answers a resume request with neither
// the remaining range nor the whole file. The partial file is kept so
// the resume data stays usable.
func (d *Download) refused(resp *http.Response) bool {
	if d.resume == nil {
		return false
	}
	return resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK
}

// openTarget opens the file the response body is written to. A partial
// content response to a resume request appends to the partial file; a
// full response to a resume request discards the partial file and
// starts from an empty one.
func (d *Download) openTarget(resp *http.Response) (*os.File, error) {
	e := d.exec

	if d.resume != nil {
		if resp.StatusCode == http.StatusPartialContent {
			start, _, _, err := parseContentRange(resp.Header.Get("Content-Range"))
			if err != nil {
				return nil, err
			}
			if start != d.resume.Offset {
				return nil, fmt.Errorf("%w: server resumed at byte %d, want %d", ErrInvalidResumeData, start, d.resume.Offset)
			}
			f, err := os.OpenFile(d.resume.TempPath, os.O_WRONLY, 0)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidResumeData, err)
			}
			if err = f.Truncate(d.resume.Offset); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("truncating partial file: %w", err)
			}
			if _, err = f.Seek(d.resume.Offset, io.SeekStart); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("seeking partial file: %w", err)
			}
			return f, nil
		}

		d.session.logger.Debug("server restarted resumed download", "url", d.req.URL.String(), "status", resp.StatusCode)
		d.discard(d.resume.TempPath)
		e.ResumeOffset = 0
	}

	f, err := os.CreateTemp(d.session.tempDir, ".httpdl-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return f, nil
}

func (d *Download) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.session.logger.Error("removing temp file", "path", path, "error", err)
	}
}

func (d *Download) wrap(err error) error {
	if d.req == nil {
		return urlErrorWrap(http.MethodGet, "", err)
	}
	return urlErrorWrap(d.req.Method, d.req.URL.String(), err)
}

// validate runs vs against the execution until one fails. It is a
// no-op for an execution which already failed. d.mu must be held.
func (d *Download) validate(vs []Validator) {
	e := d.exec
	for _, v := range vs {
		if e.Err != nil {
			return
		}
		if err := v.Validate(e); err != nil {
			e.Err = d.wrap(err)
		}
	}
}

func (d *Download) finish(tok *resumeToken) {
	d.mu.Lock()
	d.validate(d.validators)
	if tok != nil {
		d.resumeData = tok.encode()
	}
	d.state = ended
	handlers := d.handlers
	d.handlers = nil
	d.mu.Unlock()

	for _, h := range handlers {
		h(d.exec)
	}

	d.cancel()
	close(d.done)
}

// contextReader stops a body copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n.Add(int64(n))
	return n, err
}
