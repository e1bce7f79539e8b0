// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package destination provides destination policies: rules deciding
// where the bytes of a completed download end up.
//
// A transport downloads every response body into a temporary file. When
// the body has been fully received, the transport asks the operation's
// Policy to place that file. The policy returns the final location,
// which the transport reports in request.Execution.Location.
//
// Built-in policies:
//
//	destination.File("/data/report.pdf", destination.CreateIntermediateDirectories)
//	destination.Suggested("/data", destination.RemovePreviousFile)
//	destination.Bucket(bucket, "reports/latest.pdf", 0)
//	destination.Temporary()
//
// Any policy can be wrapped with Verified to check a checksum of the
// downloaded bytes before the file is placed:
//
//	destination.Verified(destination.File(path, 0), sha256.New(), expectedHex)
package destination
