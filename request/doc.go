// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the types a transport consumes and produces:
Template (the unencoded description of a download request), Plan (an
encoded, validated request plan) and Execution (the raw artifacts of a
finished download operation).

A Template carries the fully-built URL, method, parameters, parameter
encoding and composed headers. Turning it into a Plan applies the
encoding and validates the method and header fields:

	t := &request.Template{
		URL:    "https://example.com/files/report.pdf",
		Params: request.Params{"version": 3},
		Header: http.Header{"Accept": {"application/pdf"}},
	}
	p, err := t.Plan(ctx)
	...

Parameters are encoded by an Encoding. URLEncoding puts them in the
query string or a form body depending on its Destination; JSONEncoding
puts them in a JSON body.

An Execution is handed to completion handlers once a download operation
ends. It records the request sent, the response metadata received, the
location the downloaded file was placed at, and the error, if any.
*/
package request
