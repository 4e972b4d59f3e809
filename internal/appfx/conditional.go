// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package appfx

import "go.uber.org/fx"

// Conditional is a simple strategy for emitting options into an fx.App.
type Conditional struct {
}

// Then returns all the given options if this Conditional is not nil.
// If this Conditional is nil, it returns an empty fx.Options.
func (c *Conditional) Then(o ...fx.Option) fx.Option {
	if c != nil {
		return fx.Options(o...)
	}

	return fx.Options()
}

// If returns a non-nil Conditional if its sole argument is true.
//
//	fx.New(
//	  appfx.If(v.IsSet("redis.address")).Then(
//	    fx.Provide(newRedisStore),
//	  ),
//	  appfx.IfNot(v.IsSet("redis.address")).Then(
//	    fx.Provide(newMemoryStore),
//	  ),
//	)
func If(f bool) *Conditional {
	if f {
		return new(Conditional)
	}

	return nil
}

// IfNot is the boolean inverse of If
func IfNot(f bool) *Conditional {
	return If(!f)
}
