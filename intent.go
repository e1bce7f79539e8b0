// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"github.com/gogama/httpdl/destination"
)

// An Intent declares what kind of download a DownloadRequest performs.
// It is either Fresh or Resuming; no other implementations exist.
type Intent interface {
	// Policy returns the destination policy of the intent.
	Policy() destination.Policy

	intent()
}

// Fresh is the intent to download a resource from scratch.
type Fresh struct {
	// Destination places the downloaded file. If nil, the file is left
	// where the transport spooled it.
	Destination destination.Policy
}

// Policy implements Intent.
func (f Fresh) Policy() destination.Policy {
	return f.Destination
}

func (Fresh) intent() {}

// Resuming is the intent to continue an interrupted download.
type Resuming struct {
	// ResumeData is the token produced by the interrupted download
	// operation.
	ResumeData []byte
	// Destination places the completed file. If nil, the file is left
	// where the transport spooled it.
	Destination destination.Policy
}

// Policy implements Intent.
func (r Resuming) Policy() destination.Policy {
	return r.Destination
}

func (Resuming) intent() {}
