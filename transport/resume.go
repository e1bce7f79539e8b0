// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrInvalidResumeData indicates resume data which cannot be used to
// continue a download.
var ErrInvalidResumeData = errors.New("httpdl/transport: invalid resume data")

const resumeTokenVersion = 1

// resumeToken is the decoded form of resume data. It records where the
// partial body lives and how to ask the server for the rest of it.
type resumeToken struct {
	Version      int         `json:"v"`
	URL          string      `json:"url"`
	Header       http.Header `json:"header,omitempty"`
	ETag         string      `json:"etag,omitempty"`
	LastModified string      `json:"last_modified,omitempty"`
	TempPath     string      `json:"temp_path"`
	Offset       int64       `json:"offset"`
	Total        int64       `json:"total"`
}

func decodeResumeToken(data []byte) (*resumeToken, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidResumeData)
	}

	var tok resumeToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResumeData, err)
	}

	switch {
	case tok.Version != resumeTokenVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidResumeData, tok.Version)
	case tok.URL == "":
		return nil, fmt.Errorf("%w: missing url", ErrInvalidResumeData)
	case tok.TempPath == "":
		return nil, fmt.Errorf("%w: missing temp path", ErrInvalidResumeData)
	case tok.Offset <= 0:
		return nil, fmt.Errorf("%w: offset %d", ErrInvalidResumeData, tok.Offset)
	case tok.validator() == "":
		return nil, fmt.Errorf("%w: missing validator", ErrInvalidResumeData)
	}

	return &tok, nil
}

func (tok *resumeToken) encode() []byte {
	tok.Version = resumeTokenVersion
	b, err := json.Marshal(tok)
	if err != nil {
		return nil
	}
	return b
}

// validator returns the If-Range value identifying the partial body.
func (tok *resumeToken) validator() string {
	if tok.ETag != "" {
		return tok.ETag
	}
	return tok.LastModified
}

func (tok *resumeToken) request(ctx context.Context) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, tok.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range tok.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	r.Header.Set("Range", fmt.Sprintf("bytes=%d-", tok.Offset))
	r.Header.Set("If-Range", tok.validator())
	return r, nil
}

// newResumeToken builds a token for a download interrupted after
// offset bytes, or returns nil if the response carries nothing the
// server could use to check the partial body is still current.
func newResumeToken(req *http.Request, resp *http.Response, tempPath string, offset, total int64) *resumeToken {
	if req == nil || resp == nil || offset <= 0 {
		return nil
	}
	if resp.Header.Get("Accept-Ranges") == "none" {
		return nil
	}

	tok := &resumeToken{
		URL:      req.URL.String(),
		Header:   resumableHeader(req.Header),
		TempPath: tempPath,
		Offset:   offset,
		Total:    total,
	}
	// Weak entity tags may not be used in If-Range.
	if etag := resp.Header.Get("ETag"); etag != "" && !strings.HasPrefix(etag, "W/") {
		tok.ETag = etag
	}
	tok.LastModified = resp.Header.Get("Last-Modified")
	if tok.validator() == "" {
		return nil
	}

	return tok
}

func resumableHeader(h http.Header) http.Header {
	h2 := h.Clone()
	h2.Del("Range")
	h2.Del("If-Range")
	h2.Del(RequestIDHeader)
	if len(h2) == 0 {
		return nil
	}
	return h2
}

// parseContentRange parses a Content-Range header value of the form
// "bytes start-end/total". Total is -1 if unknown.
func parseContentRange(header string) (start, end, total int64, err error) {
	header = strings.TrimPrefix(header, "bytes ")
	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}

	rangeParts := strings.Split(parts[0], "-")
	if len(rangeParts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}

	start, err = strconv.ParseInt(rangeParts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid start byte: %w", err)
	}

	end, err = strconv.ParseInt(rangeParts[1], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid end byte: %w", err)
	}

	if parts[1] == "*" {
		total = -1
	} else {
		total, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid total bytes: %w", err)
		}
	}

	return start, end, total, nil
}
