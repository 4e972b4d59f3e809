// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postaltest

import (
	"fmt"
	"testing"
)

// AsTB converts a value into a testing.TB.  The v parameter may be a
// *testing.T, *testing.B, or a type that provides a T() *testing.T method,
// such as a stretchr test suite.
//
// If v cannot be coerced into a testing.TB, this function panics.
func AsTB(v any) testing.TB {
	if tb, ok := v.(testing.TB); ok {
		return tb
	}

	type testHolder interface {
		T() *testing.T
	}

	if th, ok := v.(testHolder); ok {
		return th.T()
	}

	panic(fmt.Errorf("%T cannot be converted into a testing.TB", v))
}
