// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"net/http"

	"github.com/xmidt-org/httpaux/roundtrip"
)

var emptyHeader = Header{}

// Header is an immutable set of HTTP headers, useful for keeping
// deep copies of unmarshaled http.Header values when decorating clients
// and handlers.
//
// The zero value is an immutable, empty Header.
type Header struct {
	h http.Header
}

// NewHeader makes a deep copy of the given source with each key
// canonicalized.  Keys without values are dropped.
func NewHeader(src http.Header) Header {
	if len(src) > 0 {
		cleaned := make(http.Header, len(src))
		for key, values := range src {
			if len(key) > 0 && len(values) > 0 {
				key = http.CanonicalHeaderKey(key)
				cleaned[key] = append(cleaned[key], values...)
			}
		}

		if len(cleaned) > 0 {
			return Header{h: cleaned}
		}
	}

	return emptyHeader
}

// NewHeaderFromMap is a simpler version of NewHeader for single-valued headers.
func NewHeaderFromMap(src map[string]string) Header {
	h := make(http.Header, len(src))
	for key, value := range src {
		if len(key) > 0 {
			h[key] = []string{value}
		}
	}

	return NewHeader(h)
}

// Len returns the count of keys in this header
func (h Header) Len() int {
	return len(h.h)
}

// AddTo appends this Header's key/values to the given http.Header.
func (h Header) AddTo(dst http.Header) {
	for key, values := range h.h {
		dst[key] = append(dst[key], values...)
	}
}

// AddResponse is server middleware that adds all headers to
// the response.  If this Header is empty, next is returned undecorated.
func (h Header) AddResponse(next http.Handler) http.Handler {
	if h.Len() == 0 {
		return next
	}

	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		h.AddTo(response.Header())
		next.ServeHTTP(response, request)
	})
}

// AddRequest is a RoundTripperConstructor that adds all headers to each
// outgoing request.  The caller's request is cloned, never modified.  If this
// Header is empty, next is returned undecorated.  A nil next is treated as
// http.DefaultTransport.
func (h Header) AddRequest(next http.RoundTripper) http.RoundTripper {
	if h.Len() == 0 {
		return next
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
		request = request.Clone(request.Context())
		if request.Header == nil {
			request.Header = make(http.Header, h.Len())
		}

		h.AddTo(request.Header)
		return next.RoundTrip(request)
	})
}
