// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/httpaux/roundtrip"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MiddlewareSuite struct {
	suite.Suite
}

func (suite *MiddlewareSuite) respond(status int, err error) http.RoundTripper {
	return roundtrip.Func(func(*http.Request) (*http.Response, error) {
		if err != nil {
			return nil, err
		}

		return &http.Response{StatusCode: status, Body: http.NoBody}, nil
	})
}

func (suite *MiddlewareSuite) TestRequestID() {
	suite.Run("Generated", func() {
		var actual string
		rt := RequestID()(roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			actual = request.Header.Get(RequestIDHeader)
			return new(http.Response), nil
		}))

		original := httptest.NewRequest("GET", "/posts", nil)
		_, err := rt.RoundTrip(original)
		suite.Require().NoError(err)

		_, err = uuid.Parse(actual)
		suite.NoError(err)
		suite.Empty(original.Header.Get(RequestIDHeader))
	})

	suite.Run("Preserved", func() {
		var actual string
		rt := RequestID()(roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			actual = request.Header.Get(RequestIDHeader)
			return new(http.Response), nil
		}))

		request := httptest.NewRequest("GET", "/posts", nil)
		request.Header.Set(RequestIDHeader, "existing")
		_, err := rt.RoundTrip(request)
		suite.Require().NoError(err)
		suite.Equal("existing", actual)
	})
}

func (suite *MiddlewareSuite) TestLogging() {
	suite.Run("Success", func() {
		core, logs := observer.New(zap.DebugLevel)
		rt := Logging(zap.New(core))(suite.respond(204, nil))

		response, err := rt.RoundTrip(httptest.NewRequest("DELETE", "/posts/2.json", nil))
		suite.Require().NoError(err)
		suite.Equal(204, response.StatusCode)

		entries := logs.FilterMessage("round trip").All()
		suite.Require().Len(entries, 1)
		suite.Equal("DELETE", entries[0].ContextMap()["method"])
		suite.EqualValues(204, entries[0].ContextMap()["status"])
	})

	suite.Run("Error", func() {
		core, logs := observer.New(zap.DebugLevel)
		expected := errors.New("expected")
		rt := Logging(zap.New(core))(suite.respond(0, expected))

		_, err := rt.RoundTrip(httptest.NewRequest("GET", "/posts", nil))
		suite.Same(expected, err)
		suite.Equal(1, logs.FilterMessage("round trip failed").Len())
	})

	suite.Run("NilLogger", func() {
		next := suite.respond(200, nil)
		suite.NotNil(Logging(nil)(next))
	})
}

func (suite *MiddlewareSuite) TestMetrics() {
	suite.Run("Success", func() {
		registry := prometheus.NewPedanticRegistry()
		ctor, err := Metrics(registry, MetricsConfig{})
		suite.Require().NoError(err)
		suite.Require().NotNil(ctor)

		rt := ctor(suite.respond(200, nil))
		for i := 0; i < 3; i++ {
			_, err := rt.RoundTrip(httptest.NewRequest("GET", "/posts", nil))
			suite.Require().NoError(err)
		}

		count, err := testutil.GatherAndCount(registry, "postal_client_requests_total")
		suite.Require().NoError(err)
		suite.Equal(1, count, "one series for code=200,method=get")
	})

	suite.Run("DuplicateRegistration", func() {
		registry := prometheus.NewPedanticRegistry()
		_, err := Metrics(registry, MetricsConfig{Namespace: "test"})
		suite.Require().NoError(err)

		_, err = Metrics(registry, MetricsConfig{Namespace: "test"})
		suite.Error(err)
	})
}

func TestMiddleware(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}
