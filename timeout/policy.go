// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/httpdl/request"
)

// A Policy defines a timeout policy which may be plugged into a
// transport session to direct how long a download operation may run
// before it is abandoned with a timeout error.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the time limit for the download operation whose
	// execution is e.
	//
	// Parameter e has its Plan, Request and ResumeOffset set, but no
	// response yet.
	Timeout(e *request.Execution) time.Duration
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as timeout policies.
type PolicyFunc func(e *request.Execution) time.Duration

// Timeout calls f(e).
func (f PolicyFunc) Timeout(e *request.Execution) time.Duration {
	return f(e)
}

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// DefaultPolicy is the default timeout policy. Downloads may be
// arbitrarily large, so it never times out; bound the wait with a
// context deadline or a Fixed policy instead.
var DefaultPolicy = Infinite

// Fixed constructs a timeout policy that uses the same value for every
// download operation.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

// Resumable constructs a timeout policy that gives fresh downloads the
// limit fresh and downloads continuing from resume data the limit
// resumed. Resumptions typically transfer fewer bytes, so resumed is
// often shorter.
func Resumable(fresh, resumed time.Duration) Policy {
	return PolicyFunc(func(e *request.Execution) time.Duration {
		if e.Resumed() {
			return resumed
		}
		return fresh
	})
}

type fixed time.Duration

func (d fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(d)
}
