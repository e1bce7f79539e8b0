// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/transient"
)

func TestOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o := Success[int, apiError](3)
		assert.True(t, o.IsSuccess())
		v, ok := o.Value()
		assert.True(t, ok)
		assert.Equal(t, 3, v)
		assert.Nil(t, o.Err())
	})
	t.Run("failure", func(t *testing.T) {
		err := NewTransportError[apiError](errors.New("boom"), nil)
		o := Failure[int, apiError](err)
		assert.False(t, o.IsSuccess())
		v, ok := o.Value()
		assert.False(t, ok)
		assert.Zero(t, v)
		assert.Same(t, err, o.Err())
	})
	t.Run("zero value", func(t *testing.T) {
		var o Outcome[string, apiError]
		assert.True(t, o.IsSuccess())
		v, ok := o.Value()
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})
	t.Run("nil failure", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpdl: nil failure error", func() {
			Failure[int, apiError](nil)
		})
	})
}

func TestError(t *testing.T) {
	exec := &request.Execution{Response: &http.Response{StatusCode: 409}}

	t.Run("domain", func(t *testing.T) {
		err := NewDomainError(apiError{Code: "conflict"}, exec)
		assert.True(t, err.IsDomain())
		p, ok := err.Payload()
		assert.True(t, ok)
		assert.Equal(t, "conflict", p.Code)
		assert.Nil(t, err.Unwrap())
		assert.Same(t, exec, err.Execution())
		assert.Equal(t, 409, err.StatusCode())
		assert.Equal(t, transient.Not, err.Category())
		assert.False(t, err.Timeout())
		assert.Equal(t, "httpdl: domain error (status 409): {Code:conflict}", err.Error())
	})
	t.Run("transport", func(t *testing.T) {
		cause := &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}
		err := NewTransportError[apiError](cause, nil)
		assert.False(t, err.IsDomain())
		p, ok := err.Payload()
		assert.False(t, ok)
		assert.Zero(t, p)
		assert.Same(t, cause, err.Unwrap())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, err.Execution())
		assert.Equal(t, 0, err.StatusCode())
		assert.Equal(t, transient.Canceled, err.Category())
		assert.Equal(t, `httpdl: Get "http://x": context canceled`, err.Error())
	})
	t.Run("timeout", func(t *testing.T) {
		err := NewTransportError[apiError](&url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, exec)
		assert.True(t, err.Timeout())
		assert.Equal(t, transient.Timeout, err.Category())
	})
	t.Run("valid", func(t *testing.T) {
		assert.True(t, NewDomainError(apiError{}, nil).valid())
		assert.True(t, NewTransportError[apiError](ErrNoValue, nil).valid())
		assert.False(t, (&Error[apiError]{}).valid())
	})
	t.Run("nil transport error", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpdl: nil transport error", func() {
			NewTransportError[apiError](nil, exec)
		})
	})
}
