// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command httpdl downloads files over HTTP using the httpdl library.
//
//	httpdl get <path-or-url> [flags]
//	httpdl resume <resume-file> [flags]
//
// Run "httpdl help" for the full list of flags.
package main
