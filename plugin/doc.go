// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package plugin provides ready-made httpdl plugins: a structured
// logger, an OpenTelemetry tracer, and an in-flight activity tracker.
//
// Install a plugin on every request performed through a client with
// Client.Plugins.PushBack, or on a single request with
// DownloadRequest.Plugins.PushBack.
package plugin
