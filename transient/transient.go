// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the category of a transport-level error, as reported
// by function Categorize().
//
// The category Not means the error is none of the well-known transport
// conditions below, for example a validation failure or a failure to
// write the downloaded file.
type Category int

const (
	// Not indicates an error which is none of the other categories.
	Not Category = iota
	// Timeout indicates a client-side timeout, including an exceeded
	// context deadline.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// Canceled indicates the operation was cancelled, either through
	// its live handle or through its context.
	//
	// Function Categorize() will return Canceled if the error is not a
	// Timeout and the error or any of its wrapped causes is
	// context.Canceled.
	Canceled
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Function Categorize() will return ConnRefused if the error is not
	// a Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET. A download interrupted this way is a good
	// candidate for resumption.
	//
	// Function Categorize() will return ConnReset if the error is not a
	// Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNRESET.
	ConnReset
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"Canceled",
	"ConnRefused",
	"ConnReset",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(?)"
	}
	return categoryNames[c]
}

// Categorize returns the category of the given error. A nil error, and
// an error that matches no well-known transport condition, both produce
// the return value Not.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
