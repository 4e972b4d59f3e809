// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"net/http"

	"go.uber.org/multierr"
)

// Option represents something that can modify a target object.
type Option[T any] interface {
	Apply(*T) error
}

// OptionFunc is a closure type that can act as an Option.
type OptionFunc[T any] func(*T) error

func (of OptionFunc[T]) Apply(t *T) error {
	return of(t)
}

// Options is an aggregate Option that allows several options to
// be grouped together.
type Options[T any] []Option[T]

// Apply applies all the options in this slice.  Every option is applied even
// when earlier ones fail, and the returned error aggregates all failures.
func (o Options[T]) Apply(t *T) (err error) {
	for _, opt := range o {
		err = multierr.Append(err, opt.Apply(t))
	}

	return
}

// OptionClosure represents the closure types that are convertible
// into Option objects.
type OptionClosure[T any] interface {
	~func(*T) | ~func(*T) error
}

// AsOption converts a closure into an Option for a given target type.
func AsOption[T any, F OptionClosure[T]](f F) Option[T] {
	fv := any(f)
	if of, ok := fv.(func(*T) error); ok {
		return OptionFunc[T](of)
	}

	return OptionFunc[T](func(t *T) error {
		fv.(func(*T))(t)
		return nil
	})
}

// ApplyOptions applies several options to a target, returning that same target.
func ApplyOptions[T any](t *T, opts ...Option[T]) (result *T, err error) {
	result = t
	err = Options[T](opts).Apply(result)
	return
}

// InvalidOption returns an Option that always fails with the given error.
func InvalidOption[T any](err error) Option[T] {
	return OptionFunc[T](func(_ *T) error {
		return err
	})
}

// ClientMiddleware decorates an *http.Client's Transport with the given
// constructors.  A nil Transport is treated as http.DefaultTransport.
func ClientMiddleware(ctors ...RoundTripperConstructor) Option[http.Client] {
	return OptionFunc[http.Client](func(c *http.Client) error {
		c.Transport = NewRoundTripperChain(ctors...).Then(c.Transport)
		return nil
	})
}

// Transport sets the *http.Client's Transport, replacing any existing one.
func Transport(rt http.RoundTripper) Option[http.Client] {
	return OptionFunc[http.Client](func(c *http.Client) error {
		c.Transport = rt
		return nil
	})
}
