// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub_Deliver(t *testing.T) {
	var lookups, dispatched int32
	delivery := func() Dispatcher {
		atomic.AddInt32(&lookups, 1)
		return DispatcherFunc(func(task func()) {
			atomic.AddInt32(&dispatched, 1)
			task()
		})
	}

	t.Run("no delay", func(t *testing.T) {
		atomic.StoreInt32(&lookups, 0)
		atomic.StoreInt32(&dispatched, 0)
		s := &Stub[int, apiError]{Enabled: true, Outcome: Success[int, apiError](1)}

		var outcomes []Outcome[int, apiError]
		s.deliver(delivery, func(o Outcome[int, apiError]) {
			outcomes = append(outcomes, o)
		})

		require.Len(t, outcomes, 1)
		assert.True(t, outcomes[0].IsSuccess())
		assert.Equal(t, int32(0), atomic.LoadInt32(&lookups))
		assert.Equal(t, int32(0), atomic.LoadInt32(&dispatched))
	})
	t.Run("delay", func(t *testing.T) {
		atomic.StoreInt32(&lookups, 0)
		atomic.StoreInt32(&dispatched, 0)
		s := &Stub[int, apiError]{Enabled: true, Outcome: Success[int, apiError](2), Delay: time.Millisecond}

		outcomes := make(chan Outcome[int, apiError], 1)
		s.deliver(delivery, func(o Outcome[int, apiError]) {
			outcomes <- o
		})

		o := awaitOutcome(t, outcomes)
		v, _ := o.Value()
		assert.Equal(t, 2, v)
		assert.Equal(t, int32(1), atomic.LoadInt32(&lookups))
		assert.Equal(t, int32(1), atomic.LoadInt32(&dispatched))
	})
	t.Run("nil client", func(t *testing.T) {
		var c *Client
		s := &Stub[int, apiError]{Enabled: true, Outcome: Success[int, apiError](3)}
		called := false
		s.deliver(c.delivery, func(Outcome[int, apiError]) { called = true })
		assert.True(t, called)
	})
}
