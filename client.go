// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"log/slog"
	"net/http"

	"github.com/gogama/httpdl/transport"
)

// A Client orchestrates typed download requests. It owns the transport
// manager, the client-wide plugins, the dispatchers, and the URL and
// header builders every request performed through it shares.
//
// The zero value client has no manager, so only stubbed requests can
// be performed through it. Use NewClient, or set Manager, to perform
// real requests.
//
// A Client is safe for concurrent use by multiple goroutines provided
// its fields are not modified while requests are being performed.
type Client struct {
	// Manager creates the transport operations. Performing a request
	// which is not stubbed through a client with a nil manager panics.
	Manager transport.Manager
	// Plugins are notified of every request performed through the
	// client, after the request's own plugins.
	Plugins Plugins
	// URLBuilder builds request URLs from request paths. If nil, paths
	// are used as URLs unchanged.
	URLBuilder URLBuilder
	// HeaderBuilder composes request headers. If nil, each request is
	// sent with its own headers only.
	HeaderBuilder HeaderBuilder
	// Main runs plugin notifications and hands completions to the
	// Delivery dispatcher. It must run tasks serially in FIFO order. If
	// nil, MainQueue() is used.
	Main Dispatcher
	// Delivery runs completion callbacks. If nil, MainQueue() is used.
	Delivery Dispatcher
	// Stubbing stubs every request which has a Stub, even if the stub
	// is not Enabled.
	Stubbing bool
	// Logger receives debug logs of performed requests. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// NewClient returns a client which joins request paths onto baseURL and
// runs operations through m.
func NewClient(baseURL string, m transport.Manager) *Client {
	return &Client{
		Manager:    m,
		URLBuilder: BaseURL(baseURL),
	}
}

func (c *Client) url(path string) string {
	if c.URLBuilder == nil {
		return path
	}

	return c.URLBuilder.URL(path)
}

func (c *Client) headers(auth AuthorizationRequirement, h http.Header) http.Header {
	if c.HeaderBuilder == nil {
		return h.Clone()
	}

	return c.HeaderBuilder.Headers(auth, h)
}

func (c *Client) main() Dispatcher {
	if c.Main == nil {
		return MainQueue()
	}

	return c.Main
}

func (c *Client) delivery() Dispatcher {
	if c == nil || c.Delivery == nil {
		return MainQueue()
	}

	return c.Delivery
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}

	return c.Logger
}
