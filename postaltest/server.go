// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postaltest

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/xmidt-org/postal/postalserver"
	"go.uber.org/zap/zaptest"
)

// Server is an in-process backend for tests, backed by a MemoryStore.
type Server struct {
	*httptest.Server

	// Store is the backend's storage, which tests may seed or inspect.
	Store *postalserver.MemoryStore

	// Handler is the backend's complete handler.
	Handler http.Handler
}

// NewServer starts a backend that is closed when the test completes.  The t
// parameter has the same restrictions as AsTB.  The clock may be nil.
func NewServer(t any, clock postalserver.Clock) *Server {
	tb := AsTB(t)
	tb.Helper()

	store := postalserver.NewMemoryStore(clock)
	handler, err := postalserver.NewRouter(store, postalserver.RouterOptions{
		Logger: zaptest.NewLogger(tb),
	})

	if err != nil {
		tb.Fatalf("unable to create the backend: %s", err)
	}

	s := &Server{
		Server:  httptest.NewServer(handler),
		Store:   store,
		Handler: handler,
	}

	tb.Cleanup(s.Close)
	return s
}

// Seed creates a post in this server's store.
func (s *Server) Seed(title, content string) postalserver.Post {
	p, err := s.Store.CreatePost(context.Background(), postalserver.Post{Title: title, Content: content})
	if err != nil {
		// a MemoryStore never fails to create
		panic(err)
	}

	return p
}
