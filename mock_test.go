// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/gogama/httpdl/destination"
	"github.com/gogama/httpdl/request"
	"github.com/gogama/httpdl/transport"
)

type mockManager struct {
	mock.Mock
}

func newMockManager(t *testing.T) *mockManager {
	m := &mockManager{}
	m.Test(t)
	return m
}

func (m *mockManager) StartsImmediately() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockManager) Download(ctx context.Context, t *request.Template, dst destination.Policy) transport.Operation {
	args := m.Called(ctx, t, dst)
	op, _ := args.Get(0).(transport.Operation)
	return op
}

func (m *mockManager) DownloadResuming(ctx context.Context, resumeData []byte, dst destination.Policy) transport.Operation {
	args := m.Called(ctx, resumeData, dst)
	op, _ := args.Get(0).(transport.Operation)
	return op
}

type mockOperation struct {
	mock.Mock
	handler func(*request.Execution)
}

func newMockOperation(t *testing.T) *mockOperation {
	m := &mockOperation{}
	m.Test(t)
	return m
}

func (m *mockOperation) Request() *http.Request {
	args := m.Called()
	r, _ := args.Get(0).(*http.Request)
	return r
}

func (m *mockOperation) Resume() {
	m.Called()
}

func (m *mockOperation) Cancel() {
	m.Called()
}

func (m *mockOperation) Done() <-chan struct{} {
	return nil
}

func (m *mockOperation) Validate(vs ...transport.Validator) {
	m.Called(len(vs))
}

func (m *mockOperation) OnComplete(h func(e *request.Execution)) {
	m.Called()
	m.handler = h
}

func (m *mockOperation) ResumeData() []byte {
	return nil
}

func (m *mockOperation) Progress() transport.Progress {
	return transport.Progress{Total: -1}
}

// complete simulates the transport ending the operation.
func (m *mockOperation) complete(e *request.Execution) {
	if m.handler == nil {
		panic("no completion handler attached")
	}
	m.handler(e)
}

// plainOperation is an Operation which is not a DownloadOperation.
type plainOperation struct{}

func (plainOperation) Request() *http.Request { return nil }
func (plainOperation) Resume()                {}
func (plainOperation) Cancel()                {}
func (plainOperation) Done() <-chan struct{}  { return nil }

// trace records an ordered sequence of events from any goroutine.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(format string, args ...interface{}) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, fmt.Sprintf(format, args...))
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func tracingPlugin(name string, tr *trace) Plugin {
	return PluginFunc(func(evt Event, r *http.Request, resp *http.Response, err error) {
		tr.add("%s.%s", name, evt)
	})
}
