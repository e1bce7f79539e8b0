// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"
	"sync"
)

// An ActivityChange is a transition of the number of in-flight requests
// into or out of zero.
type ActivityChange int

const (
	// Began means the first request of a burst of activity was sent.
	Began ActivityChange = iota
	// Ended means the last in-flight request received its response.
	Ended
)

// String returns the name of the change.
func (c ActivityChange) String() string {
	switch c {
	case Began:
		return "Began"
	case Ended:
		return "Ended"
	}
	return "ActivityChange(?)"
}

// An Activity is a plugin which counts in-flight requests and reports
// when network activity begins and ends, for example to drive a busy
// indicator.
//
// The callback is called while the Activity's lock is held, so it sees
// changes in the order they happened. It must not call back into the
// Activity.
type Activity struct {
	mu       sync.Mutex
	inFlight int
	onChange func(ActivityChange)
}

// NewActivity returns a plugin which calls onChange each time activity
// begins or ends. Parameter onChange may be nil.
func NewActivity(onChange func(ActivityChange)) *Activity {
	return &Activity{onChange: onChange}
}

// InFlight returns the number of requests which were sent and have not
// yet received a response.
func (a *Activity) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// WillSendRequest implements httpdl.Plugin.
func (a *Activity) WillSendRequest(_ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.inFlight++
	if a.inFlight == 1 && a.onChange != nil {
		a.onChange(Began)
	}
}

// DidReceiveResponse implements httpdl.Plugin.
func (a *Activity) DidReceiveResponse(_ *http.Request, _ *http.Response, _ []byte, _ error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.inFlight == 0 {
		return
	}
	a.inFlight--
	if a.inFlight == 0 && a.onChange != nil {
		a.onChange(Ended)
	}
}
