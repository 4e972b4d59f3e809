// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MiddlewareSuite struct {
	suite.Suite
}

func (suite *MiddlewareSuite) TestLogging() {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logging(zap.New(core))(
		http.HandlerFunc(func(response http.ResponseWriter, _ *http.Request) {
			response.WriteHeader(http.StatusTeapot)
		}),
	)

	request := httptest.NewRequest(http.MethodGet, "/posts", nil)
	request.Header.Set("X-Request-Id", "abc")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	suite.Require().Equal(1, logs.Len())
	fields := logs.All()[0].ContextMap()
	suite.Equal("GET", fields["method"])
	suite.Equal("/posts", fields["path"])
	suite.Equal(int64(http.StatusTeapot), fields["status"])
	suite.Equal("abc", fields["requestID"])
}

func (suite *MiddlewareSuite) TestRecover() {
	core, logs := observer.New(zap.ErrorLevel)
	handler := Recover(zap.New(core))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("expected")
		}),
	)

	response := httptest.NewRecorder()
	handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/", nil))
	suite.Equal(http.StatusInternalServerError, response.Code)
	suite.JSONEq(`{"error": "Internal Server Error"}`, response.Body.String())
	suite.Equal(1, logs.Len())
}

func (suite *MiddlewareSuite) TestMetrics() {
	registry := prometheus.NewRegistry()
	m, err := Metrics(registry, "test")
	suite.Require().NoError(err)

	handler := m(http.HandlerFunc(func(response http.ResponseWriter, _ *http.Request) {
		response.WriteHeader(http.StatusAccepted)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	count, err := testutil.GatherAndCount(registry, "test_server_requests_total")
	suite.Require().NoError(err)
	suite.Equal(1, count)

	_, err = Metrics(registry, "test")
	suite.Error(err)
}

func TestMiddleware(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}
