// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogama/httpdl/request"
)

// ErrNoFile indicates a completed download that has no file location.
var ErrNoFile = errors.New("httpdl: download has no file")

// FileLocation returns a serializer whose model is the location the
// destination policy placed the downloaded file at. Failures with a
// non-2XX response are parsed as JSON domain payloads of type E: see
// JSONErrorPayload.
func FileLocation[E any]() Serializer[string, E] {
	return Pair[string, E](
		ResponseSerializerFunc[string](func(e *request.Execution) Result[string] {
			if e.Location == "" {
				return Failed[string](ErrNoFile)
			}
			return Succeeded(e.Location)
		}),
		JSONErrorPayload[string, E](),
	)
}

// JSONFile returns a serializer which decodes the downloaded file as
// JSON into a value of type M. An empty file produces no value.
// Failures with a non-2XX response are parsed as JSON domain payloads
// of type E: see JSONErrorPayload.
func JSONFile[M, E any]() Serializer[M, E] {
	return Pair[M, E](
		ResponseSerializerFunc[M](func(e *request.Execution) Result[M] {
			var v M
			empty, err := decodeJSONFile(e.Location, &v)
			switch {
			case err != nil:
				return Failed[M](err)
			case empty:
				return Empty[M]()
			}
			return Succeeded(v)
		}),
		JSONErrorPayload[M, E](),
	)
}

// JSONErrorPayload returns an error serializer which decodes the
// downloaded file as a JSON domain payload of type E when the server
// answered with a non-2XX status. Any other failure, or a payload which
// cannot be decoded, becomes a transport error.
//
// The serializer only reads the file. It stays at the execution's
// Location, reachable through the returned error's Execution, and the
// caller removes it.
func JSONErrorPayload[M, E any]() ErrorSerializer[M, E] {
	return ErrorSerializerFunc[M, E](func(prior *Result[M], e *request.Execution) *Error[E] {
		if code := e.StatusCode(); code != 0 && (code < 200 || code > 299) && e.Location != "" {
			var payload E
			if empty, err := decodeJSONFile(e.Location, &payload); err == nil && !empty {
				return NewDomainError(payload, e)
			}
		}
		return NewTransportError[E](failureCause(prior, e), e)
	})
}

func decodeJSONFile(path string, v any) (empty bool, err error) {
	if path == "" {
		return false, ErrNoFile
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening downloaded file: %w", err)
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(v)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("decoding downloaded file: %w", err)
	}

	return false, nil
}
