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
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/grade"
)

// Submitter accepts requests for asynchronous processing.
// [*Pool] implements this interface.
type Submitter interface {
	Submit(ctx context.Context, req Request, reply chan<- Response) error
}

// Client issues requests to a [Submitter] and matches the responses to
// the waiting callers by request id.  Responses with unknown ids are
// discarded.
//
// A Client is safe for concurrent use.
type Client struct {
	backend   Submitter
	responses chan Response

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan Response

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient creates a client which sends its requests to backend.
// Call [Client.Close] to release the resources held by the client.
func NewClient(backend Submitter) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		backend:   backend,
		responses: make(chan Response, 16),
		pending:   make(map[uint64]chan Response),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go c.dispatch()
	return c
}

func (c *Client) dispatch() {
	defer close(c.done)
	for {
		select {
		case resp := <-c.responses:
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			delete(c.pending, resp.RequestID)
			c.mu.Unlock()

			if !ok {
				grade.Logger().Warn("discarding response for unknown request",
					"key", resp.Key,
					"requestId", resp.RequestID)
				continue
			}
			ch <- resp
		case <-c.ctx.Done():
			return
		}
	}
}

// Generate asks the backend for a LUT of the given resolution.
// The payload is encoded as JSON and interpreted according to mode.
//
// If ctx is cancelled before the response arrives, Generate returns
// ctx.Err() and the response is discarded when it arrives.
func (c *Client) Generate(ctx context.Context, key string, resolution int, mode Mode, payload any) (*grade.LUT3D, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	resp, err := c.Do(ctx, Request{
		Key:        key,
		Resolution: resolution,
		Payload:    body,
		Mode:       mode,
	})
	if err != nil {
		return nil, err
	}
	return resp.LUT()
}

// Do sends a request and waits for the matching response.
// The RequestID field of req is replaced by a fresh id.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	if c.ctx.Err() != nil {
		return Response{}, ErrClosed
	}

	req.RequestID = c.nextID.Add(1)
	ch := make(chan Response, 1)
	c.mu.Lock()
	c.pending[req.RequestID] = ch
	c.mu.Unlock()
	defer c.forget(req.RequestID)

	// The request context ends when either the caller gives up or the
	// client is closed.
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	if err := c.backend.Submit(reqCtx, req, c.responses); err != nil {
		return Response{}, c.wrapErr(err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-reqCtx.Done():
		return Response{}, c.wrapErr(reqCtx.Err())
	}
}

// wrapErr reports ErrClosed for requests which were cut short by Close.
func (c *Client) wrapErr(err error) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	return err
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Pending returns the ids of the requests which are waiting for a
// response, in increasing order.
func (c *Client) Pending() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := maps.Keys(c.pending)
	slices.Sort(ids)
	return ids
}

// Close stops the client.  Calls to [Client.Do] which are waiting for a
// response return [ErrClosed].  The backend is not closed.
func (c *Client) Close() error {
	c.cancel()
	<-c.done
	return nil
}
