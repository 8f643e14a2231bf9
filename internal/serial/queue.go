// Package serial runs aggregate mutations one at a time on a dedicated goroutine.
package serial

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBusy is returned when the queue could not accept work within the enqueue timeout.
	ErrBusy = errors.New("mutation queue is busy")
	// ErrClosed is returned for work submitted after Close.
	ErrClosed = errors.New("mutation queue is closed")
)

const defaultEnqueueTimeout = 2 * time.Second

// job envelopes the work the queue goroutine must perform.
type job struct {
	ctx   context.Context
	fn    func(context.Context) error
	reply chan error
}

// Queue owns a goroutine so writers never race on the same aggregate.
type Queue struct {
	jobs    chan job
	quit    chan struct{}
	done    chan struct{}
	timeout time.Duration
}

// NewQueue starts the background goroutine immediately.
func NewQueue() *Queue {
	return NewQueueWithTimeout(defaultEnqueueTimeout)
}

// NewQueueWithTimeout is NewQueue with a custom bound on how long Do waits to hand work over.
func NewQueueWithTimeout(timeout time.Duration) *Queue {
	q := &Queue{
		jobs:    make(chan job),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		timeout: timeout,
	}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		select {
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.reply <- err
				continue
			}
			j.reply <- j.fn(j.ctx)
		case <-q.quit:
			return
		}
	}
}

// Do runs fn on the queue goroutine and waits for its result.
func (q *Queue) Do(ctx context.Context, fn func(context.Context) error) error {
	// buffered so the loop never blocks on a caller that gave up waiting
	reply := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, reply: reply}

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case q.jobs <- j:
	case <-q.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBusy
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the goroutine and waits for the job in flight to finish.
func (q *Queue) Close() {
	select {
	case <-q.quit:
	default:
		close(q.quit)
	}
	<-q.done
}
