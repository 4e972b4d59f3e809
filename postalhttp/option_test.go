// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/httpaux/roundtrip"
	"go.uber.org/multierr"
)

type OptionSuite struct {
	suite.Suite
	target *http.Client
}

func (suite *OptionSuite) SetupTest() {
	suite.target = new(http.Client)
}

func (suite *OptionSuite) SetupSubTest() {
	suite.target = new(http.Client)
}

func (suite *OptionSuite) TestAsOption() {
	suite.Run("NoError", func() {
		called := false
		err := AsOption[http.Client](func(c *http.Client) {
			suite.Same(suite.target, c)
			called = true
		}).Apply(suite.target)

		suite.NoError(err)
		suite.True(called)
	})

	suite.Run("WithError", func() {
		expected := errors.New("expected")
		err := AsOption[http.Client](func(c *http.Client) error {
			return expected
		}).Apply(suite.target)

		suite.Same(expected, err)
	})
}

func (suite *OptionSuite) TestApplyOptions() {
	var (
		first  = errors.New("first")
		second = errors.New("second")
		calls  int
	)

	result, err := ApplyOptions(
		suite.target,
		InvalidOption[http.Client](first),
		AsOption[http.Client](func(*http.Client) { calls++ }),
		InvalidOption[http.Client](second),
	)

	suite.Same(suite.target, result)
	suite.Equal(1, calls, "every option should run even after a failure")
	suite.Equal([]error{first, second}, multierr.Errors(err))
}

func (suite *OptionSuite) TestTransport() {
	rt := roundtrip.Func(func(*http.Request) (*http.Response, error) {
		return nil, nil
	})

	suite.NoError(Transport(rt).Apply(suite.target))
	suite.NotNil(suite.target.Transport)
}

func (suite *OptionSuite) TestClientMiddleware() {
	suite.Run("NoTransport", func() {
		called := false
		err := ClientMiddleware(func(next http.RoundTripper) http.RoundTripper {
			suite.Same(http.DefaultTransport, next)
			return roundtrip.Func(func(*http.Request) (*http.Response, error) {
				called = true
				return new(http.Response), nil
			})
		}).Apply(suite.target)

		suite.Require().NoError(err)
		suite.Require().NotNil(suite.target.Transport)
		suite.target.Transport.RoundTrip(new(http.Request))
		suite.True(called)
	})

	suite.Run("WithTransport", func() {
		suite.target.Transport = roundtrip.Func(func(*http.Request) (*http.Response, error) {
			return &http.Response{Header: http.Header{}}, nil
		})

		err := ClientMiddleware(func(next http.RoundTripper) http.RoundTripper {
			return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
				response, err := next.RoundTrip(request)
				response.Header.Set("Middleware", "true")
				return response, err
			})
		}).Apply(suite.target)

		suite.Require().NoError(err)
		response, err := suite.target.Transport.RoundTrip(new(http.Request))
		suite.Require().NoError(err)
		suite.Equal("true", response.Header.Get("Middleware"))
	})
}

func TestOption(t *testing.T) {
	suite.Run(t, new(OptionSuite))
}
