// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

// An Event identifies a point in the lifecycle of a performed request
// at which plugins are notified.
type Event int

const (
	// WillSendRequest identifies the event that occurs after the
	// transport operation has been created and started, but before its
	// validators and completion handler are attached.
	//
	// The request passed with WillSendRequest is nil if the transport
	// could not build one. The event still fires in that case.
	WillSendRequest Event = iota
	// DidReceiveResponse identifies the event that occurs after the
	// transport operation completes, whether or not it failed. It fires
	// on the client's Main dispatcher, before the completion callback
	// is delivered.
	DidReceiveResponse
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"WillSendRequest",
	"DidReceiveResponse",
}

// Events returns a slice containing all events which can occur while a
// request is performed, in the order in which they occur.
func Events() []Event {
	return []Event{
		WillSendRequest,
		DidReceiveResponse,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
