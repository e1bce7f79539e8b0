// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport-level errors from a download
// operation into well-known categories: timeouts, cancellations,
// refused connections and reset connections. The unified error type of
// package httpdl uses it to answer Timeout() and Category().
//
// Package transient depends only on the standard library.
package transient
