// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"context"

	"go.uber.org/zap"
)

// Result is the outcome of one lookup submitted to a Stream.
type Result struct {
	// ID is the identifier that was submitted.
	ID string

	// Record is the fetched record.  It is nil when Err is set.
	Record Record

	// Err is the error from the lookup, if any.
	Err error
}

type streamState int

const (
	streamIdle streamState = iota
	streamPending
)

// completion is sent by a fetch goroutine when its lookup returns.
type completion struct {
	generation uint64
	result     Result
}

// Stream is a "latest wins" sequence of lookups by identifier.  At most one
// lookup is in flight at any time.  Submitting an identifier while a lookup
// is in flight cancels that lookup's request, and its result is dropped even
// if it arrives anyway.  Results of lookups that are not superseded are
// delivered in submission order, including failures.
//
// A Stream must be closed to release its goroutine, either through Close or
// by canceling the context passed to Client.Stream.
type Stream struct {
	client *Client
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	submits chan string
	results chan Result
	done    chan struct{}
}

func newStream(ctx context.Context, c *Client) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		client:  c,
		logger:  c.logger,
		ctx:     ctx,
		cancel:  cancel,
		submits: make(chan string),
		results: make(chan Result),
		done:    make(chan struct{}),
	}

	go s.run()
	return s
}

// Submit requests a lookup of the given identifier, superseding any lookup
// still in flight.  ErrStreamClosed is returned once this stream is closed.
func (s *Stream) Submit(id string) error {
	if s.ctx.Err() != nil {
		return ErrStreamClosed
	}

	select {
	case s.submits <- id:
		return nil

	case <-s.ctx.Done():
		return ErrStreamClosed
	}
}

// Results returns the channel on which lookup results are delivered.  The
// channel is closed when this stream is closed.  Results not yet received
// at that point are discarded.
func (s *Stream) Results() <-chan Result {
	return s.results
}

// Close cancels any lookup in flight and closes the Results channel.  This
// method is idempotent and waits for the stream's goroutine to exit.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Done returns a channel that is closed once this stream has shut down.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) fetch(ctx context.Context, generation uint64, id string, completions chan<- completion) {
	record, err := s.client.Get(ctx, id)
	select {
	case completions <- completion{generation: generation, result: Result{ID: id, Record: record, Err: err}}:
	case <-ctx.Done():
	}
}

// startFetch begins a lookup in its own context, returning the function
// that aborts it.
func (s *Stream) startFetch(generation uint64, id string, completions chan<- completion) context.CancelFunc {
	ctx, cancel := context.WithCancel(s.ctx)
	go s.fetch(ctx, generation, id, completions)
	return cancel
}

// run owns all mutable state of the stream.
func (s *Stream) run() {
	defer close(s.done)
	defer close(s.results)

	var (
		state      = streamIdle
		pendingID  string
		generation uint64

		cancelFetch = context.CancelFunc(func() {})
		completions = make(chan completion)

		// queue holds results waiting for the consumer
		queue []Result
	)

	defer func() { cancelFetch() }()

	for {
		var (
			out  chan<- Result
			next Result
		)

		if len(queue) > 0 {
			out = s.results
			next = queue[0]
		}

		select {
		case <-s.ctx.Done():
			return

		case id := <-s.submits:
			if state == streamPending {
				s.logger.Debug("superseding lookup", zap.String("id", pendingID), zap.String("next", id))
				cancelFetch()
			}

			generation++
			state, pendingID = streamPending, id

			cancelFetch = s.startFetch(generation, id, completions)

		case c := <-completions:
			if state != streamPending || c.generation != generation {
				s.logger.Debug("dropping superseded result", zap.String("id", c.result.ID))
				continue
			}

			cancelFetch()
			state, pendingID = streamIdle, ""
			queue = append(queue, c.result)

		case out <- next:
			queue = queue[1:]
		}
	}
}
