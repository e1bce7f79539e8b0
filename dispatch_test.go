// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediate(t *testing.T) {
	var ran bool
	Immediate.Dispatch(func() { ran = true })
	assert.True(t, ran)
}

func TestAsync(t *testing.T) {
	done := make(chan struct{})
	Async.Dispatch(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "async task did not run")
	}
}

func TestQueue(t *testing.T) {
	t.Run("FIFO", func(t *testing.T) {
		q := NewQueue()
		var mu sync.Mutex
		var order []int
		for i := 0; i < 100; i++ {
			i := i
			q.Dispatch(func() {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, i)
			})
		}
		<-q.Close()
		require.Len(t, order, 100)
		for i, v := range order {
			assert.Equal(t, i, v)
		}
	})
	t.Run("nested dispatch", func(t *testing.T) {
		q := NewQueue()
		tr := &trace{}
		done := make(chan struct{})
		q.Dispatch(func() {
			tr.add("outer")
			q.Dispatch(func() {
				tr.add("inner")
				close(done)
			})
			tr.add("outer end")
		})
		<-done
		<-q.Close()
		assert.Equal(t, []string{"outer", "outer end", "inner"}, tr.get())
	})
	t.Run("Close drains", func(t *testing.T) {
		q := NewQueue()
		block := make(chan struct{})
		var ran bool
		q.Dispatch(func() { <-block })
		q.Dispatch(func() { ran = true })
		done := q.Close()
		assert.True(t, done == q.Close(), "Close returns the same channel")
		close(block)
		<-done
		assert.True(t, ran)
	})
	t.Run("panic", func(t *testing.T) {
		q := NewQueue()
		assert.PanicsWithValue(t, "httpdl: nil task", func() {
			q.Dispatch(nil)
		})
		<-q.Close()
		assert.PanicsWithValue(t, "httpdl: dispatch on closed queue", func() {
			q.Dispatch(func() {})
		})
	})
}

func TestMainQueue(t *testing.T) {
	q := MainQueue()
	require.NotNil(t, q)
	assert.Same(t, q, MainQueue())
	done := make(chan struct{})
	q.Dispatch(func() { close(done) })
	<-done
}
