// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport executes download operations over HTTP.

A Session is the Manager implementation used by httpdl.Client. It turns
a request.Template, or resume data from an earlier interrupted download,
into a Download operation. Each Download runs on its own goroutine: it
sends one HTTP request, spools the response body to a temporary file,
hands the file to a destination.Policy, runs its validators and finally
calls its completion handlers with the resulting request.Execution.

	s, err := transport.NewSession(
		transport.WithUserAgent("example/1.0"),
		transport.WithTimeout(timeout.Fixed(5*time.Minute)),
	)
	op := s.Download(ctx, &request.Template{URL: u}, destination.Temporary())
	op.Validate()
	op.OnComplete(func(e *request.Execution) { ... })

A download interrupted while receiving its body, for example by Cancel,
produces resume data if the server identified the resource with an ETag
or Last-Modified header. Pass the resume data to DownloadResuming to
continue the transfer with a Range request.

Any error reported in Execution.Err by a Download is of type *url.Error.
*/
package transport
