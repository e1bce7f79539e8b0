// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package commands defines the httpdl CLI and wires the library
// together for its subcommands.
//
// Commands
//
//   - get     Download a path or URL
//   - resume  Continue a download interrupted by a signal or a dropped
//     connection, from the resume file it left behind
//
// # Configuration
//
// The root command loads configuration from defaults, an optional YAML
// file (--config), HTTPDL_ environment variables and flags, in that
// order of precedence, then builds a transport session and a client
// before any subcommand runs.
//
// # Interruption
//
// On SIGINT or SIGTERM the running download is cancelled and, if the
// server supports it, resume data is written to the resume file so the
// download can continue later with "httpdl resume".
package commands
