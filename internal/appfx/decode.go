// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package appfx

import (
	"encoding"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultDecodeHooks is a viper option that sets the decode hooks used for
// all postal configuration.  Durations may be written as "15s", slices as
// comma-separated strings, and any encoding.TextUnmarshaler is honored.
func DefaultDecodeHooks(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		TextUnmarshalerHookFunc,
	)
}

// Exact sets the DecoderConfig.ErrorUnused flag, so that unknown keys
// are reported as errors.
func Exact(dc *mapstructure.DecoderConfig) {
	dc.ErrorUnused = true
}

// Merge takes any number of slices of decoder options and merges them
// into a single option, applied in order.
func Merge(opts ...[]viper.DecoderConfigOption) viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		for _, group := range opts {
			for _, o := range group {
				o(dc)
			}
		}
	}
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// TextUnmarshalerHookFunc is a mapstructure.DecodeHookFunc that uses the
// destination type's encoding.TextUnmarshaler to convert a string.
//
// The destination may be a non-pointer type whose pointer implements
// encoding.TextUnmarshaler, e.g. time.Time, or a pointer type that implements
// it directly.  More than one level of indirection is not supported.
//
// When no conversion applies, src is returned unchanged with a nil error,
// as required by mapstructure.
func TextUnmarshalerHookFunc(_, to reflect.Type, src interface{}) (interface{}, error) {
	text, ok := src.(string)
	if !ok {
		return src, nil
	}

	switch {
	case to.Kind() != reflect.Ptr && reflect.PtrTo(to).Implements(textUnmarshalerType):
		ptr := reflect.New(to)
		err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
		return ptr.Elem().Interface(), err

	case to.Kind() == reflect.Ptr && to.Elem().Kind() != reflect.Ptr && to.Implements(textUnmarshalerType):
		ptr := reflect.New(to.Elem())
		tu := ptr.Interface().(encoding.TextUnmarshaler)
		err := tu.UnmarshalText([]byte(text))
		return tu, err
	}

	return src, nil
}
