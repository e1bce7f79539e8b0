// Copyright 2021 The httpdl Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpdl

import (
	"sync"
)

// A Dispatcher runs tasks. A Client uses one dispatcher to notify
// plugins and another to deliver completions.
//
// The Main dispatcher of a Client must run tasks one at a time in the
// order they were dispatched. The Delivery dispatcher may run tasks in
// any manner.
type Dispatcher interface {
	Dispatch(task func())
}

// The DispatcherFunc type is an adapter to allow the use of ordinary
// functions as dispatchers.
type DispatcherFunc func(task func())

// Dispatch calls f(task).
func (f DispatcherFunc) Dispatch(task func()) {
	f(task)
}

// Immediate is a dispatcher which runs each task synchronously on the
// dispatching goroutine.
var Immediate Dispatcher = DispatcherFunc(func(task func()) {
	task()
})

// Async is a dispatcher which runs each task on a new goroutine. It
// does not preserve order and must not be used as a Main dispatcher.
var Async Dispatcher = DispatcherFunc(func(task func()) {
	go task()
})

// A Queue is a dispatcher which runs tasks one at a time, in the order
// they were dispatched, on a dedicated goroutine. The queue is
// unbounded, so Dispatch never blocks.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	done   chan struct{}
}

// NewQueue creates a queue and starts its goroutine.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Dispatch adds task to the back of the queue. Dispatching to a closed
// queue panics.
func (q *Queue) Dispatch(task func()) {
	if task == nil {
		panic("httpdl: nil task")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		panic("httpdl: dispatch on closed queue")
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// Close stops the queue once the tasks already dispatched have run. It
// returns a channel which is closed when the queue goroutine exits.
func (q *Queue) Close() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	return q.done
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}

var (
	mainQueue     *Queue
	mainQueueOnce sync.Once
)

// MainQueue returns the process-wide queue used as the default Main and
// Delivery dispatcher. It is created on first use and never closed.
func MainQueue() *Queue {
	mainQueueOnce.Do(func() {
		mainQueue = NewQueue()
	})
	return mainQueue
}
