// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
)

// ServerConfig is the unmarshalable configuration for an *http.Server.
type ServerConfig struct {
	// Network is the tcp network to listen on.  The default is "tcp".
	Network string

	// Address is the bind address of the server.  If unset, the server binds to
	// the first port available.
	Address string

	// ReadTimeout corresponds to http.Server.ReadTimeout
	ReadTimeout time.Duration

	// ReadHeaderTimeout corresponds to http.Server.ReadHeaderTimeout
	ReadHeaderTimeout time.Duration

	// WriteTimeout corresponds to http.Server.WriteTimeout
	WriteTimeout time.Duration

	// IdleTimeout corresponds to http.Server.IdleTimeout
	IdleTimeout time.Duration

	// MaxHeaderBytes corresponds to http.Server.MaxHeaderBytes
	MaxHeaderBytes int

	// KeepAlive corresponds to net.ListenConfig.KeepAlive.
	KeepAlive time.Duration

	// Header supplies HTTP headers to emit on every response from this server
	Header http.Header
}

// NewServer creates an *http.Server whose handler is h decorated with
// this configuration's response headers.
func (sc ServerConfig) NewServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              sc.Address,
		Handler:           NewHeader(sc.Header).AddResponse(h),
		ReadTimeout:       sc.ReadTimeout,
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       sc.IdleTimeout,
		MaxHeaderBytes:    sc.MaxHeaderBytes,
	}
}

// Listen creates the net.Listener for a server built from this configuration.
// It is assignable to Listen.
func (sc ServerConfig) Listen(ctx context.Context, s *http.Server) (net.Listener, error) {
	network := sc.Network
	if len(network) == 0 {
		network = "tcp"
	}

	lc := net.ListenConfig{
		KeepAlive: sc.KeepAlive,
	}

	return lc.Listen(ctx, network, s.Addr)
}

// Listen is a closure factory for a server's net.Listener.
type Listen func(context.Context, *http.Server) (net.Listener, error)

// CaptureAddr decorates a Listen so that the actual address of each created
// listener is sent to ch.  Useful when binding to ":0" in tests.
func CaptureAddr(ch chan<- net.Addr, next Listen) Listen {
	return func(ctx context.Context, s *http.Server) (net.Listener, error) {
		l, err := next(ctx, s)
		if err == nil {
			ch <- l.Addr()
		}

		return l, err
	}
}

// ServerExit is a callback run when a server exits its accept loop.
type ServerExit func()

// ShutdownOnExit returns a ServerExit that shuts down the enclosing fx.App,
// so that a server which stops accepting also stops the application.
func ShutdownOnExit(shutdowner fx.Shutdowner, opts ...fx.ShutdownOption) ServerExit {
	return func() {
		shutdowner.Shutdown(opts...)
	}
}

// Serve executes the server's accept loop on l, running each onExit
// callback when the loop exits.
func Serve(s *http.Server, l net.Listener, onExit ...ServerExit) error {
	defer func() {
		for _, f := range onExit {
			f()
		}
	}()

	return s.Serve(l)
}

// ServerOnStart returns an fx.Hook OnStart closure that creates the listener
// and runs the server's accept loop in a goroutine.
func ServerOnStart(s *http.Server, l Listen, onExit ...ServerExit) func(context.Context) error {
	return func(ctx context.Context) error {
		listener, err := l(ctx, s)
		if err != nil {
			return err
		}

		go Serve(s, listener, onExit...)
		return nil
	}
}

// BindServer appends OnStart/OnStop hooks for s to the lifecycle.  When the
// accept loop exits for any reason, shutdowner is used to stop the app.
func BindServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *http.Server, l Listen) {
	lc.Append(fx.Hook{
		OnStart: ServerOnStart(s, l, ShutdownOnExit(shutdowner)),
		OnStop:  s.Shutdown,
	})
}
