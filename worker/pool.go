// seehuhn.de/go/grade - colour grading transforms and 3D lookup tables
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package worker

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/grade"
)

// Options configure a [Pool].
type Options struct {
	// Workers is the number of goroutines evaluating requests.
	// If zero or negative, GOMAXPROCS is used.
	Workers int

	// QueueSize is the number of requests which can be waiting for a free
	// worker.  If zero or negative, four times the number of workers
	// is used.
	QueueSize int
}

// Option modifies the options of a [Pool].
type Option func(opt *Options)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) Option {
	return func(opt *Options) {
		opt.Workers = n
	}
}

// WithQueueSize sets the capacity of the request queue.
func WithQueueSize(n int) Option {
	return func(opt *Options) {
		opt.QueueSize = n
	}
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan<- Response
}

// Pool evaluates requests on a fixed set of goroutines.
//
// A Pool is safe for concurrent use.
type Pool struct {
	queue chan job
	eg    *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// NewPool starts a new pool of workers.
// Call [Pool.Close] to stop the workers.
func NewPool(opts ...Option) *Pool {
	opt := &Options{}
	for _, o := range opts {
		o(opt)
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := opt.QueueSize
	if queueSize <= 0 {
		queueSize = 4 * workers
	}

	p := &Pool{
		queue: make(chan job, queueSize),
		eg:    &errgroup.Group{},
	}
	for range workers {
		p.eg.Go(p.run)
	}
	return p
}

func (p *Pool) run() error {
	for j := range p.queue {
		var resp Response
		if err := j.ctx.Err(); err != nil {
			// abandoned while waiting in the queue
			resp = Response{Key: j.req.Key, RequestID: j.req.RequestID, Error: err.Error()}
		} else {
			grade.Logger().Debug("processing LUT request",
				"key", j.req.Key,
				"requestId", j.req.RequestID,
				"resolution", j.req.Resolution)
			resp = Handle(j.ctx, j.req)
		}

		select {
		case j.reply <- resp:
		case <-j.ctx.Done():
		}
	}
	return nil
}

// Submit queues a request.  The response is sent to reply once the request
// has been processed.  If ctx is cancelled before the response has been
// delivered, the response is dropped.
//
// Submit blocks while the queue is full.  It returns ctx.Err() if ctx is
// cancelled while waiting, and [ErrClosed] if the pool has been closed.
func (p *Pool) Submit(ctx context.Context, req Request, reply chan<- Response) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- job{ctx: ctx, req: req, reply: reply}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do processes a request and waits for the response.
func (p *Pool) Do(ctx context.Context, req Request) (Response, error) {
	reply := make(chan Response, 1)
	if err := p.Submit(ctx, req, reply); err != nil {
		return Response{}, err
	}
	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close stops accepting new requests, waits until all queued requests have
// been processed, and stops the workers.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	return p.eg.Wait()
}
