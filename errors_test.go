// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type TransportErrorSuite struct {
	suite.Suite
}

func (suite *TransportErrorSuite) TestReasonPhrase() {
	testCases := []struct {
		status   string
		code     int
		expected string
	}{
		{"422 Boom", 422, "Boom"},
		{"404 Not Found", 404, "Not Found"},
		{"500", 500, "Internal Server Error"},
		{"", 503, "Service Unavailable"},
		{"299 Custom Reason Here", 299, "Custom Reason Here"},
	}

	for _, testCase := range testCases {
		suite.Run(testCase.status, func() {
			suite.Equal(
				testCase.expected,
				reasonPhrase(&http.Response{Status: testCase.status, StatusCode: testCase.code}),
			)
		})
	}
}

func (suite *TransportErrorSuite) TestResponseError() {
	request := httptest.NewRequest(http.MethodPost, "http://localhost/posts", nil)
	response := &http.Response{
		Status:     "422 Boom",
		StatusCode: 422,
		Body:       io.NopCloser(strings.NewReader(`{"title":["can't be blank"]}`)),
	}

	te := newResponseError(request, response)
	suite.Equal(422, te.StatusCode)
	suite.Equal("Boom", te.Status)
	suite.Equal(http.MethodPost, te.Method)
	suite.Equal("http://localhost/posts", te.URL)
	suite.Equal(map[string][]string{"title": {"can't be blank"}}, te.FieldErrors())
	suite.Nil(te.Unwrap())
	suite.Contains(te.Error(), "422 Boom")
	suite.False(errors.Is(te, ErrNotFound))
	suite.Equal(422, StatusCode(fmt.Errorf("wrapped: %w", te)))
}

func (suite *TransportErrorSuite) TestNotFound() {
	te := &TransportError{StatusCode: http.StatusNotFound, Status: "Not Found"}
	suite.ErrorIs(te, ErrNotFound)
	suite.True(IsNotFound(fmt.Errorf("wrapped: %w", te)))
	suite.False(IsNotFound(errors.New("some other error")))
}

func (suite *TransportErrorSuite) TestNetworkError() {
	request := httptest.NewRequest(http.MethodGet, "http://localhost/posts/1.json", nil)
	te := newNetworkError(request, context.Canceled)

	suite.Zero(te.StatusCode)
	suite.ErrorIs(te, context.Canceled)
	suite.Contains(te.Error(), context.Canceled.Error())
	suite.Nil(te.FieldErrors())
	suite.Zero(StatusCode(te))
	suite.Zero(StatusCode(errors.New("not a transport error")))
}

func (suite *TransportErrorSuite) TestFieldErrorsUnexpectedBody() {
	te := &TransportError{StatusCode: 500, Body: []byte("<html>oops</html>")}
	suite.Nil(te.FieldErrors())
}

func TestTransportError(t *testing.T) {
	suite.Run(t, new(TransportErrorSuite))
}
