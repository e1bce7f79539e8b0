// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package throttle provides an http.RoundTripper that rate-limits
// outbound download requests using a token-bucket algorithm from
// golang.org/x/time/rate.
//
// Sessions install it through transport.WithThrottle. It can also wrap
// a transport directly:
//
//	rt, err := throttle.NewRoundTripper(10, 5, func() *slog.Logger { return slog.Default() }, http.DefaultTransport)
//	hc := &http.Client{Transport: rt}
//
// When the rate limit is exceeded, requests block until a token becomes
// available or the request context ends.
package throttle
