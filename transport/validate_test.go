// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/httpdl/request"
)

func execution(status int, contentType, accept string, size int64) *request.Execution {
	e := &request.Execution{
		Request:      &http.Request{Header: http.Header{}},
		Response:     &http.Response{StatusCode: status, Header: http.Header{}},
		BytesWritten: size,
	}
	if contentType != "" {
		e.Response.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		e.Request.Header.Set("Accept", accept)
	}
	return e
}

func TestSuccessStatusCode(t *testing.T) {
	v := SuccessStatusCode()
	assert.NoError(t, v.Validate(execution(200, "", "", 1)))
	assert.NoError(t, v.Validate(execution(299, "", "", 1)))
	assert.ErrorIs(t, v.Validate(execution(199, "", "", 1)), ErrUnacceptableStatusCode)
	assert.ErrorIs(t, v.Validate(execution(300, "", "", 1)), ErrUnacceptableStatusCode)
	assert.ErrorIs(t, v.Validate(&request.Execution{}), ErrUnacceptableStatusCode)
}

func TestStatusCodes(t *testing.T) {
	v := StatusCodes(200, 304)
	assert.NoError(t, v.Validate(execution(304, "", "", 1)))
	err := v.Validate(execution(201, "", "", 1))
	assert.ErrorIs(t, err, ErrUnacceptableStatusCode)
	assert.EqualError(t, err, "httpdl/transport: unacceptable status code: status 201")
}

func TestContentTypes(t *testing.T) {
	testCases := []struct {
		name     string
		patterns []string
		ct       string
		size     int64
		ok       bool
	}{
		{"exact", []string{"application/json"}, "application/json; charset=utf-8", 1, true},
		{"case", []string{"Application/JSON"}, "application/json", 1, true},
		{"subtype wildcard", []string{"text/*"}, "text/csv", 1, true},
		{"any", []string{"*/*"}, "image/png", 1, true},
		{"mismatch", []string{"application/json"}, "text/html", 1, false},
		{"missing", []string{"application/json"}, "", 1, false},
		{"missing any", []string{"*/*"}, "", 1, true},
		{"malformed", []string{"text/plain"}, "text/", 1, false},
		{"empty body", []string{"application/json"}, "text/html", 0, true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := ContentTypes(testCase.patterns...).Validate(execution(200, testCase.ct, "", testCase.size))
			if testCase.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnacceptableContentType)
			}
		})
	}
}

func TestAcceptedContentType(t *testing.T) {
	v := AcceptedContentType()
	assert.NoError(t, v.Validate(execution(200, "text/html", "", 1)))
	assert.NoError(t, v.Validate(execution(200, "application/json", "text/html, application/json;q=0.9", 1)))
	assert.ErrorIs(t, v.Validate(execution(200, "image/png", "text/*", 1)), ErrUnacceptableContentType)
	assert.NoError(t, v.Validate(&request.Execution{}))
}

func TestDefaultValidators(t *testing.T) {
	vs := DefaultValidators()
	require.Len(t, vs, 2)
	e := execution(404, "text/html", "application/json", 1)
	assert.ErrorIs(t, vs[0].Validate(e), ErrUnacceptableStatusCode)
	assert.ErrorIs(t, vs[1].Validate(e), ErrUnacceptableContentType)
}

func TestDownload_ProgressLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := newTestSession(t, httpServer, WithLogger(logger), WithProgress())
	i := serverInstruction{StatusCode: 200, Body: []bodyChunk{{Data: []byte("0123456789")}}}

	op := s.Download(context.Background(), &request.Template{URL: i.url(httpServer)}, nil).(*Download)
	e := await(t, op)

	require.NoError(t, e.Err)
	assert.Contains(t, buf.String(), "download complete")
	assert.Contains(t, buf.String(), "transferred=10")
}
