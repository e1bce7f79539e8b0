// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gogama/httpdl/timeout"
	"github.com/gogama/httpdl/transport/throttle"
)

// Option is a functional option for configuring a Session via
// NewSession.
type Option func(*options) error

type options struct {
	doer             HTTPDoer
	client           *http.Client
	rt               http.RoundTripper
	throttle         *throttle.Config
	userAgent        string
	logger           *slog.Logger
	startImmediately *bool
	tempDir          string
	timeout          timeout.Policy
	requestID        bool
	progress         bool
}

// WithHTTPDoer sends requests through doer. It may not be combined with
// WithClient, WithTransport or WithThrottle.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(o *options) error {
		if doer == nil {
			return errors.New("doer must not be nil")
		}
		o.doer = doer
		return nil
	}
}

// WithClient replaces the default http.Client used by the Session.
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom http.RoundTripper as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given
// requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithUserAgent sets the User-Agent header on every request which does
// not already carry one.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithLogger injects a custom slog.Logger into the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithStartImmediately controls whether operations start as soon as
// they are created. The default is true.
func WithStartImmediately(start bool) Option {
	return func(o *options) error {
		o.startImmediately = &start
		return nil
	}
}

// WithTempDir sets the directory download bodies are spooled into. It
// defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(o *options) error {
		fi, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("temp dir %q is not a directory", dir)
		}
		o.tempDir = dir
		return nil
	}
}

// WithTimeout sets the timeout policy applied to each operation. It
// defaults to timeout.DefaultPolicy.
func WithTimeout(p timeout.Policy) Option {
	return func(o *options) error {
		if p == nil {
			return errors.New("timeout policy must not be nil")
		}
		o.timeout = p
		return nil
	}
}

// WithRequestID sets a random X-Request-Id header on every request
// which does not already carry one.
func WithRequestID() Option {
	return func(o *options) error {
		o.requestID = true
		return nil
	}
}

// WithProgress enables periodic download progress logging via the
// session logger.
func WithProgress() Option {
	return func(o *options) error {
		o.progress = true
		return nil
	}
}
