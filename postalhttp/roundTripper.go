// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import "net/http"

// RoundTripperConstructor is a strategy for decorating an http.RoundTripper.
// Typical use cases are metrics and logging.
type RoundTripperConstructor func(http.RoundTripper) http.RoundTripper

// RoundTripperChain is an immutable sequence of RoundTripperConstructors.
// The zero value is a valid, empty chain that will not decorate anything.
type RoundTripperChain struct {
	c []RoundTripperConstructor
}

// NewRoundTripperChain creates a chain from a sequence of constructors.  The constructors
// are always applied in the order presented here.
func NewRoundTripperChain(c ...RoundTripperConstructor) RoundTripperChain {
	return RoundTripperChain{
		c: append([]RoundTripperConstructor{}, c...),
	}
}

// Append returns a new chain with more constructors added to the end.
// This chain is not modified.
func (rc RoundTripperChain) Append(more ...RoundTripperConstructor) RoundTripperChain {
	if len(more) > 0 {
		return RoundTripperChain{
			c: append(
				append([]RoundTripperConstructor{}, rc.c...),
				more...,
			),
		}
	}

	return rc
}

// Extend is like Append, except that the additional constructors come from
// another chain.
func (rc RoundTripperChain) Extend(more RoundTripperChain) RoundTripperChain {
	return rc.Append(more.c...)
}

// Len returns the number of constructors in this chain.
func (rc RoundTripperChain) Len() int {
	return len(rc.c)
}

// Then decorates next with every constructor in this chain.  The first constructor
// is the outermost, so it sees each request first.  A nil next is replaced with
// http.DefaultTransport when this chain is non-empty.  An empty chain returns next as is.
func (rc RoundTripperChain) Then(next http.RoundTripper) http.RoundTripper {
	if len(rc.c) > 0 {
		if next == nil {
			next = http.DefaultTransport
		}

		for i := len(rc.c) - 1; i >= 0; i-- {
			next = rc.c[i](next)
		}
	}

	return next
}
