// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package appfx

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// UnmarshalIn is the set of dependencies for unmarshaled components.
type UnmarshalIn struct {
	fx.In

	// Viper is the required Viper component in the enclosing fx.App
	Viper *viper.Viper

	// DecodeOptions are an optional set of options from the enclosing fx.App.
	// They are applied after DefaultDecodeHooks.
	DecodeOptions []viper.DecoderConfigOption `optional:"true"`
}

// Decode unmarshals the given key into a copy of prototype.  An empty key
// unmarshals the entire configuration.  The prototype supplies defaults
// for anything missing from configuration.
func Decode[T any](v *viper.Viper, key string, prototype T, opts ...viper.DecoderConfigOption) (T, error) {
	target := prototype
	all := append([]viper.DecoderConfigOption{DefaultDecodeHooks}, opts...)

	var err error
	if len(key) > 0 {
		err = v.UnmarshalKey(key, &target, all...)
	} else {
		err = v.Unmarshal(&target, all...)
	}

	return target, err
}

// UnmarshalKey returns an fx constructor that produces a T unmarshaled from
// the given viper key.  The prototype is copied and used as the default value.
//
//	fx.New(
//	  fx.Supply(v),
//	  fx.Provide(
//	    appfx.UnmarshalKey("client", postal.Config{Collection: "posts"}),
//	  ),
//	)
func UnmarshalKey[T any](key string, prototype T, opts ...viper.DecoderConfigOption) func(UnmarshalIn) (T, error) {
	return func(in UnmarshalIn) (T, error) {
		return Decode(in.Viper, key, prototype, Merge(in.DecodeOptions, opts))
	}
}
