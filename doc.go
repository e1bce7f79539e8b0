// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpdl executes typed download requests.

A DownloadRequest declares what to download (a fresh download or the
resumption of an interrupted one), where the file should end up, and how
to turn the raw transport result into either a typed model value or a
typed domain error. Performing it yields exactly one Outcome.

Create a Client around a transport manager to begin making requests.

	session, err := transport.NewSession(transport.WithUserAgent("example/1.0"))
	...
	client := httpdl.NewClient("https://api.example.com", session)

	req := httpdl.NewDownload(client, "/reports/42", destination.Temporary(),
		httpdl.JSONFile[Report, APIError]())
	req.Perform(ctx, func(o httpdl.Outcome[Report, APIError]) {
		if report, ok := o.Value(); ok {
			...
		}
	})

Plugins observe every request performed through a client. Each plugin's
WillSendRequest runs synchronously inside Perform, before the request is
validated. DidReceiveResponse runs on the client's Main dispatcher once
the transport completes, and always before the completion callback,
which runs on the client's Delivery dispatcher.

	client.Plugins.PushBack(plugin.NewLogger(slog.Default()))

A request can be short-circuited with a Stub, in which case no transport
operation is created, no plugin runs, and the stub's outcome is
delivered instead:

	req.Stub = &httpdl.Stub[Report, APIError]{
		Enabled: true,
		Outcome: httpdl.Success[Report, APIError](Report{ID: 42}),
	}

Configuration faults, such as performing a request without a client or
manager, panic. Everything that goes wrong at run time, including
transport failures, is delivered as a Failure outcome carrying an
*Error.
*/
package httpdl
