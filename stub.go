// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"time"
)

// A Stub short-circuits a DownloadRequest. A request with a Stub is
// stubbed if the stub is Enabled or its client has Stubbing set.
//
// A stubbed request creates no transport operation and notifies no
// plugins. Its completion receives Outcome, and Perform returns nil.
type Stub[M, E any] struct {
	// Enabled stubs the request regardless of the client's Stubbing
	// switch.
	Enabled bool
	// Outcome is delivered to the completion callback.
	Outcome Outcome[M, E]
	// Delay postpones delivery. If zero, the completion is called
	// synchronously from Perform. Otherwise it is called on the
	// client's Delivery dispatcher after the delay.
	Delay time.Duration
}

// deliver calls completion with the stubbed outcome. The dispatcher is
// only looked up when delivery is delayed.
func (s *Stub[M, E]) deliver(delivery func() Dispatcher, completion func(Outcome[M, E])) {
	if s.Delay <= 0 {
		completion(s.Outcome)
		return
	}

	outcome := s.Outcome
	d := delivery()
	time.AfterFunc(s.Delay, func() {
		d.Dispatch(func() {
			completion(outcome)
		})
	})
}
