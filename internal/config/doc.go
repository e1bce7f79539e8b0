// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates configuration for the httpdl
// command line tool. Values come from defaults, a YAML file, HTTPDL_
// environment variables and command line flags, in increasing order of
// precedence.
package config
