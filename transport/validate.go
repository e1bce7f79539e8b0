// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gogama/httpdl/request"
)

var (
	// ErrUnacceptableStatusCode indicates a response status code
	// rejected by a validator.
	ErrUnacceptableStatusCode = errors.New("httpdl/transport: unacceptable status code")
	// ErrUnacceptableContentType indicates a response content type
	// rejected by a validator.
	ErrUnacceptableContentType = errors.New("httpdl/transport: unacceptable content type")
	// ErrContentLengthMismatch indicates the server sent fewer or more
	// body bytes than it announced.
	ErrContentLengthMismatch = errors.New("httpdl/transport: content length mismatch")
)

// ValidationError wraps a validation sentinel error with detail about
// the rejected response.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// A Validator checks a download's execution after the downloaded file
// has been placed. A non-nil error fails the operation.
type Validator interface {
	Validate(e *request.Execution) error
}

// The ValidatorFunc type is an adapter to allow the use of ordinary
// functions as validators.
type ValidatorFunc func(e *request.Execution) error

// Validate calls f(e).
func (f ValidatorFunc) Validate(e *request.Execution) error {
	return f(e)
}

// DefaultValidators returns the validators added by a call to
// DownloadOperation.Validate with no arguments: a 2XX status code, and
// a content type matching the request's Accept header.
func DefaultValidators() []Validator {
	return []Validator{SuccessStatusCode(), AcceptedContentType()}
}

// SuccessStatusCode accepts any 2XX status code.
func SuccessStatusCode() Validator {
	return ValidatorFunc(func(e *request.Execution) error {
		if code := e.StatusCode(); code < 200 || code > 299 {
			return &ValidationError{Err: ErrUnacceptableStatusCode, Detail: fmt.Sprintf("status %d", code)}
		}
		return nil
	})
}

// StatusCodes accepts only the listed status codes.
func StatusCodes(codes ...int) Validator {
	return ValidatorFunc(func(e *request.Execution) error {
		code := e.StatusCode()
		for _, c := range codes {
			if c == code {
				return nil
			}
		}
		return &ValidationError{Err: ErrUnacceptableStatusCode, Detail: fmt.Sprintf("status %d", code)}
	})
}

// ContentTypes accepts a response whose media type matches one of the
// patterns, which may use wildcards such as "text/*" or "*/*". Empty
// downloads are always accepted.
func ContentTypes(patterns ...string) Validator {
	return ValidatorFunc(func(e *request.Execution) error {
		return validateContentType(e, patterns)
	})
}

// AcceptedContentType accepts a response whose media type matches the
// request's Accept header. A request without an Accept header accepts
// any content type.
func AcceptedContentType() Validator {
	return ValidatorFunc(func(e *request.Execution) error {
		var accept string
		if e.Request != nil {
			accept = e.Request.Header.Get("Accept")
		}
		if accept == "" {
			return nil
		}
		return validateContentType(e, parseAccept(accept))
	})
}

func validateContentType(e *request.Execution, patterns []string) error {
	if e.Size() == 0 {
		return nil
	}

	ct := e.Header().Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ct)
	if ct == "" || err != nil {
		for _, p := range patterns {
			if p == "*/*" {
				return nil
			}
		}
		return &ValidationError{Err: ErrUnacceptableContentType, Detail: fmt.Sprintf("missing or malformed content type %q", ct)}
	}

	for _, p := range patterns {
		if matchMediaType(p, mt) {
			return nil
		}
	}

	return &ValidationError{
		Err:    ErrUnacceptableContentType,
		Detail: fmt.Sprintf("%s not in [%s]", mt, strings.Join(patterns, ", ")),
	}
}

func parseAccept(accept string) []string {
	var patterns []string
	for _, part := range strings.Split(accept, ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil {
			patterns = append(patterns, mt)
		}
	}
	return patterns
}

func matchMediaType(pattern, mt string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "*/*" || pattern == mt {
		return true
	}
	pType, pSub, ok := strings.Cut(pattern, "/")
	if !ok {
		return false
	}
	mType, mSub, _ := strings.Cut(mt, "/")
	return pType == mType && (pSub == "*" || pSub == mSub)
}
