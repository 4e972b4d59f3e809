// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postaltest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GateSuite struct {
	suite.Suite
}

func (suite *GateSuite) handler() http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.WriteHeader(http.StatusOK)
		response.Write([]byte(request.URL.Path)) //nolint:errcheck
	})
}

func (suite *GateSuite) roundTrip(g *Gate, request *http.Request) (<-chan *http.Response, <-chan error) {
	responses := make(chan *http.Response, 1)
	errs := make(chan error, 1)
	go func() {
		response, err := g.RoundTrip(request)
		responses <- response
		errs <- err
	}()

	return responses, errs
}

func (suite *GateSuite) TestRelease() {
	g := &Gate{Handler: suite.handler()}
	responses, errs := suite.roundTrip(g, httptest.NewRequest(http.MethodGet, "/posts/1.json", nil))

	gr := g.Next(time.Second)
	suite.Require().NotNil(gr)
	suite.Equal("/posts/1.json", gr.Request.URL.Path)

	gr.Release()
	gr.Release()
	suite.NoError(<-errs)

	response := <-responses
	body, err := io.ReadAll(response.Body)
	suite.NoError(err)
	suite.Equal("/posts/1.json", string(body))

	response.Body.Close()
	select {
	case <-gr.Closed():
	case <-time.After(time.Second):
		suite.Fail("the body close was not signaled")
	}
}

func (suite *GateSuite) TestCancel() {
	g := &Gate{Handler: suite.handler()}
	ctx, cancel := context.WithCancel(context.Background())
	_, errs := suite.roundTrip(g, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	gr := g.Next(time.Second)
	suite.Require().NotNil(gr)
	cancel()

	suite.ErrorIs(<-errs, context.Canceled)
	select {
	case <-gr.Canceled():
	case <-time.After(time.Second):
		suite.Fail("the cancellation was not signaled")
	}
}

func (suite *GateSuite) TestCancelSignaledBeforeReturn() {
	g := &Gate{Handler: suite.handler()}
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		_, errs := suite.roundTrip(g, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

		gr := g.Next(time.Second)
		suite.Require().NotNil(gr)
		cancel()
		suite.Require().ErrorIs(<-errs, context.Canceled)

		select {
		case <-gr.Canceled():
		default:
			suite.Failf("the cancellation was not signaled", "request %d", i)
			return
		}
	}
}

func (suite *GateSuite) TestIgnoreCancel() {
	g := &Gate{Handler: suite.handler(), IgnoreCancel: true}
	ctx, cancel := context.WithCancel(context.Background())
	responses, errs := suite.roundTrip(g, httptest.NewRequest(http.MethodGet, "/late", nil).WithContext(ctx))

	gr := g.Next(time.Second)
	suite.Require().NotNil(gr)
	cancel()
	<-gr.Canceled()

	gr.Release()
	suite.NoError(<-errs)
	response := <-responses
	suite.Equal(http.StatusOK, response.StatusCode)
}

func (suite *GateSuite) TestNextTimeout() {
	g := new(Gate)
	suite.Nil(g.Next(10 * time.Millisecond))
}

func TestGate(t *testing.T) {
	suite.Run(t, new(GateSuite))
}
