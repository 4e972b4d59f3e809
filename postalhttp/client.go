// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"net/http"
	"time"
)

// TransportConfig holds the unmarshalable fields of an *http.Transport.
type TransportConfig struct {
	TLSHandshakeTimeout    time.Duration
	DisableKeepAlives      bool
	DisableCompression     bool
	MaxIdleConns           int
	MaxIdleConnsPerHost    int
	MaxConnsPerHost        int
	IdleConnTimeout        time.Duration
	ResponseHeaderTimeout  time.Duration
	ExpectContinueTimeout  time.Duration
	ProxyConnectHeader     http.Header
	MaxResponseHeaderBytes int64
	WriteBufferSize        int
	ReadBufferSize         int
	ForceAttemptHTTP2      bool
}

// NewTransport creates an *http.Transport from this configuration.  The
// proxy is always taken from the environment.
func (tc TransportConfig) NewTransport() *http.Transport {
	return &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		TLSHandshakeTimeout:    tc.TLSHandshakeTimeout,
		DisableKeepAlives:      tc.DisableKeepAlives,
		DisableCompression:     tc.DisableCompression,
		MaxIdleConns:           tc.MaxIdleConns,
		MaxIdleConnsPerHost:    tc.MaxIdleConnsPerHost,
		MaxConnsPerHost:        tc.MaxConnsPerHost,
		IdleConnTimeout:        tc.IdleConnTimeout,
		ResponseHeaderTimeout:  tc.ResponseHeaderTimeout,
		ExpectContinueTimeout:  tc.ExpectContinueTimeout,
		ProxyConnectHeader:     tc.ProxyConnectHeader,
		MaxResponseHeaderBytes: tc.MaxResponseHeaderBytes,
		WriteBufferSize:        tc.WriteBufferSize,
		ReadBufferSize:         tc.ReadBufferSize,
		ForceAttemptHTTP2:      tc.ForceAttemptHTTP2,
	}
}

// ClientConfig is the unmarshalable configuration for an *http.Client.
type ClientConfig struct {
	// Timeout is the overall request timeout.  Zero means no timeout.
	Timeout time.Duration

	// Header is a set of headers added to every request.
	Header http.Header

	// Transport configures the underlying *http.Transport.
	Transport TransportConfig
}

// Apply tailors an existing client using this configuration.  The client's
// existing Transport, if any, is kept and decorated with this configuration's headers.
func (cc ClientConfig) Apply(c *http.Client) error {
	c.Timeout = cc.Timeout
	c.Transport = NewHeader(cc.Header).AddRequest(c.Transport)
	return nil
}

// NewClient creates an *http.Client from this configuration, then applies
// any options in order.  The first option sees a client whose Transport
// already carries this configuration's headers.
func (cc ClientConfig) NewClient(opts ...Option[http.Client]) (*http.Client, error) {
	client := &http.Client{
		Transport: cc.Transport.NewTransport(),
	}

	if err := cc.Apply(client); err != nil {
		return nil, err
	}

	return ApplyOptions(client, opts...)
}
