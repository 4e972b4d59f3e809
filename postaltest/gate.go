// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postaltest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// GateRequest is a request held by a Gate.
type GateRequest struct {
	// Request is the held request.
	Request *http.Request

	release    chan struct{}
	canceled   chan struct{}
	closed     chan struct{}
	cancelOnce sync.Once
	closeOnce  sync.Once
}

// Release allows the request to proceed to the Gate's handler.  Release
// is idempotent.
func (gr *GateRequest) Release() {
	select {
	case <-gr.release:
	default:
		close(gr.release)
	}
}

// Canceled is closed when the request's context is canceled while the
// request is held or being served.
func (gr *GateRequest) Canceled() <-chan struct{} {
	return gr.canceled
}

func (gr *GateRequest) cancel() {
	gr.cancelOnce.Do(func() { close(gr.canceled) })
}

// Closed is closed when the body of the request's response is closed,
// which is when the client is done with the response.
func (gr *GateRequest) Closed() <-chan struct{} {
	return gr.closed
}

type gateBody struct {
	io.ReadCloser
	gr *GateRequest
}

func (gb gateBody) Close() error {
	err := gb.ReadCloser.Close()
	gb.gr.closeOnce.Do(func() { close(gb.gr.closed) })
	return err
}

// Gate is an http.RoundTripper that holds each request until a test releases
// it, then serves it with Handler.  Tests use a Gate to control exactly when
// responses arrive.
type Gate struct {
	// Handler serves released requests.
	Handler http.Handler

	// IgnoreCancel makes held requests wait for Release even after their
	// context is canceled, simulating a transport that cannot abort.
	IgnoreCancel bool

	arrivals chan *GateRequest
	initOnce sync.Once
}

func (g *Gate) init() {
	g.initOnce.Do(func() {
		g.arrivals = make(chan *GateRequest, 100)
	})
}

// RoundTrip holds the request until released.  Unless IgnoreCancel is set,
// a canceled request returns its context's error.
func (g *Gate) RoundTrip(request *http.Request) (*http.Response, error) {
	g.init()
	gr := &GateRequest{
		Request:  request,
		release:  make(chan struct{}),
		canceled: make(chan struct{}),
		closed:   make(chan struct{}),
	}

	ctx := request.Context()
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			gr.cancel()
		case <-finished:
			if ctx.Err() != nil {
				gr.cancel()
			}
		}
	}()

	g.arrivals <- gr
	if g.IgnoreCancel {
		<-gr.release
	} else {
		select {
		case <-gr.release:
		case <-ctx.Done():
			gr.cancel()
			return nil, ctx.Err()
		}
	}

	recorder := httptest.NewRecorder()
	g.Handler.ServeHTTP(recorder, request)
	response := recorder.Result()
	response.Request = request
	response.Body = gateBody{ReadCloser: response.Body, gr: gr}
	return response, nil
}

// Next waits for the next request to arrive at this gate.  It returns nil if
// no request arrives within the timeout.
func (g *Gate) Next(timeout time.Duration) *GateRequest {
	g.init()
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case gr := <-g.arrivals:
		return gr
	case <-t.C:
		return nil
	}
}
