// Package decodepool runs tile fetch-and-decode jobs on a bounded set of
// background goroutines, isolated behind a channel-based Submit/Result
// contract so the main thread of an embedding engine never observes a
// goroutine directly. It is the one place mapengine uses OS threads; the
// rest of the engine's state machines run exclusively on the caller's
// single update thread, with no background goroutine touching engine state
// directly.
package decodepool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result carries a job's outcome back to the caller, tagged with the
// sequence number the caller stamped on submission so stale results (for a
// tile that has since been evicted or re-requested) can be discarded.
type Result[T any] struct {
	Seq   uint64
	Value T
	Err   error
}

// Job is a unit of work submitted to the Pool.
type Job[T any] struct {
	Seq uint64
	Run func(ctx context.Context) (T, error)
}

// Pool runs jobs on a bounded set of workers using errgroup.Group for
// structured cancellation: if the pool's context is cancelled (engine
// shutdown), all in-flight jobs are cancelled together.
type Pool[T any] struct {
	jobs    chan Job[T]
	results chan Result[T]
	group   *errgroup.Group
	ctx     context.Context
}

// New starts a Pool with workerCount background goroutines draining jobs
// submitted via Submit. The pool's lifetime is bound to ctx; cancelling ctx
// stops accepting new jobs and makes the workers exit; jobs still queued
// are not run.
func New[T any](ctx context.Context, workerCount int, queueDepth int) *Pool[T] {
	g, gctx := errgroup.WithContext(ctx)
	p := &Pool[T]{
		jobs:    make(chan Job[T], queueDepth),
		results: make(chan Result[T], queueDepth),
		group:   g,
		ctx:     gctx,
	}
	for i := 0; i < workerCount; i++ {
		g.Go(p.workerLoop)
	}
	return p
}

func (p *Pool[T]) workerLoop() error {
	for {
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()
		case job, ok := <-p.jobs:
			if !ok {
				return nil
			}
			value, err := job.Run(p.ctx)
			select {
			case p.results <- Result[T]{Seq: job.Seq, Value: value, Err: err}:
			case <-p.ctx.Done():
				return p.ctx.Err()
			}
		}
	}
}

// Submit enqueues job for a worker to run. It blocks while the queue is
// full, and returns without enqueuing once the pool's context is done.
func (p *Pool[T]) Submit(job Job[T]) {
	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
	}
}

// Drain returns all results currently buffered without blocking.
// Scheduler.Update calls this once per frame to collect completed
// fetch-and-decode jobs on the main thread.
func (p *Pool[T]) Drain() []Result[T] {
	var out []Result[T]
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Close stops accepting new jobs and waits for in-flight workers to exit.
func (p *Pool[T]) Close() error {
	close(p.jobs)
	return p.group.Wait()
}
