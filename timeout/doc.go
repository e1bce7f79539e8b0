// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for limiting how long a download
// operation may run. A generic interface for timeout policies is
// provided, Policy, along with a few policy generating functions and
// built-in policies.
package timeout
