// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/postal/postalhttp"
	"github.com/xmidt-org/postal/postaltest"
	"go.uber.org/zap/zaptest"
)

var backendNow = time.Date(2023, time.June, 1, 8, 30, 0, 0, time.UTC)

// BackendSuite runs a Client with its default transport against an
// in-process backend.
type BackendSuite struct {
	suite.Suite

	server   *postaltest.Server
	registry *prometheus.Registry
	client   *Client
}

func (suite *BackendSuite) SetupTest() {
	suite.server = postaltest.NewServer(suite, func() time.Time { return backendNow })
	suite.registry = prometheus.NewRegistry()

	metrics, err := postalhttp.Metrics(suite.registry, postalhttp.MetricsConfig{})
	suite.Require().NoError(err)

	cfg := DefaultConfig()
	cfg.BaseURL = suite.server.URL
	cfg.HTTP.Timeout = 10 * time.Second

	suite.client, err = New(
		cfg,
		WithLogger(zaptest.NewLogger(suite.T())),
		WithMiddleware(metrics),
	)

	suite.Require().NoError(err)
}

func (suite *BackendSuite) TestRoundTrip() {
	ctx := context.Background()

	posts, err := suite.client.List(ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(posts)

	created, err := suite.client.Save(ctx, Record{IDField: nil, "title": "Hello", "content": "World"})
	suite.Require().NoError(err)
	suite.Equal(json.Number("1"), created[IDField])

	createdAt, ok := created.Time(CreatedAtField)
	suite.Require().True(ok)
	suite.True(backendNow.Equal(createdAt))

	created["title"] = "Changed"
	updated, err := suite.client.Save(ctx, created)
	suite.Require().NoError(err)
	suite.Equal("Changed", updated["title"])

	_, ok = updated.Time(UpdatedAtField)
	suite.True(ok, "updates are normalized like every other read")

	fetched, err := suite.client.Get(ctx, "1")
	suite.Require().NoError(err)
	suite.Equal("Changed", fetched["title"])

	posts, err = suite.client.List(ctx, nil)
	suite.Require().NoError(err)
	suite.Len(posts, 1)

	suite.Require().NoError(suite.client.Delete(ctx, fetched))
	_, err = suite.client.Get(ctx, "1")
	suite.ErrorIs(err, ErrNotFound)

	count, err := testutil.GatherAndCount(suite.registry, "postal_client_requests_total")
	suite.Require().NoError(err)
	suite.Greater(count, 0)
}

func (suite *BackendSuite) TestValidation() {
	_, err := suite.client.Create(context.Background(), Record{"title": "no content"})

	var te *TransportError
	suite.Require().True(errors.As(err, &te))
	suite.Equal(http.StatusUnprocessableEntity, te.StatusCode)
	suite.Equal(map[string][]string{"content": {"can't be blank"}}, te.FieldErrors())
}

func (suite *BackendSuite) TestComments() {
	suite.server.Seed("title", "content")
	comments := suite.client.Comments("1")

	created, err := comments.Create(context.Background(), Record{"content": "first!"})
	suite.Require().NoError(err)
	suite.Equal(json.Number("1"), created["post_id"])

	list, err := comments.List(context.Background(), nil)
	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.Equal("first!", list[0]["content"])

	_, err = suite.client.Comments("2").List(context.Background(), nil)
	suite.True(IsNotFound(err))
}

func TestBackend(t *testing.T) {
	suite.Run(t, new(BackendSuite))
}
