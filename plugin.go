// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"net/http"
)

// A Plugin observes the lifecycle of requests performed through a
// Client. Plugins are notified in a fixed order: request-local plugins
// first, then client-wide plugins, each group in insertion order.
//
// A Plugin may be notified from several goroutines at once if the same
// plugin is installed on requests performed concurrently.
type Plugin interface {
	// WillSendRequest is called synchronously from Perform with the
	// request the transport operation will send. The request is nil if
	// the transport could not build one.
	WillSendRequest(r *http.Request)
	// DidReceiveResponse is called on the client's Main dispatcher when
	// the transport operation completes. The response is nil if none
	// was received. Download bodies live in files, so data is always
	// nil. Parameter err is the raw transport error, if any.
	DidReceiveResponse(r *http.Request, resp *http.Response, data []byte, err error)
}

// The PluginFunc type is an adapter to allow the use of an ordinary
// function as a plugin. The function is called for both events; resp
// and err are always nil for WillSendRequest.
type PluginFunc func(evt Event, r *http.Request, resp *http.Response, err error)

// WillSendRequest calls f(WillSendRequest, r, nil, nil).
func (f PluginFunc) WillSendRequest(r *http.Request) {
	f(WillSendRequest, r, nil, nil)
}

// DidReceiveResponse calls f(DidReceiveResponse, r, resp, err).
func (f PluginFunc) DidReceiveResponse(r *http.Request, resp *http.Response, _ []byte, err error) {
	f(DidReceiveResponse, r, resp, err)
}

// Plugins is an ordered list of plugins.
type Plugins []Plugin

// PushBack adds a plugin to the back of the list.
func (ps *Plugins) PushBack(p Plugin) {
	if p == nil {
		panic("httpdl: nil plugin")
	}

	*ps = append(*ps, p)
}

// merge returns a new list holding local followed by global. Neither
// source list is modified.
func merge(local, global Plugins) Plugins {
	merged := make(Plugins, 0, len(local)+len(global))
	merged = append(merged, local...)
	return append(merged, global...)
}

func (ps Plugins) willSendRequest(r *http.Request) {
	for _, p := range ps {
		p.WillSendRequest(r)
	}
}

func (ps Plugins) didReceiveResponse(r *http.Request, resp *http.Response, err error) {
	for _, p := range ps {
		p.DidReceiveResponse(r, resp, nil, err)
	}
}
