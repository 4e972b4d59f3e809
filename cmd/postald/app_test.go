// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/postal/postalserver"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"
)

type AppSuite struct {
	suite.Suite
}

func (suite *AppSuite) newViper(yaml string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	suite.Require().NoError(v.ReadConfig(strings.NewReader(yaml)))
	return v
}

// start runs the daemon on an ephemeral port and returns its handler and store.
func (suite *AppSuite) start(v *viper.Viper) (http.Handler, postalserver.Store) {
	var (
		handler http.Handler
		store   postalserver.Store
	)

	app := newApp(v, zaptest.NewLogger(suite.T()), fx.Populate(&handler, &store))
	suite.Require().NoError(app.Err())
	suite.Require().NoError(app.Start(context.Background()))
	suite.T().Cleanup(func() {
		suite.NoError(app.Stop(context.Background()))
	})

	return handler, store
}

func (suite *AppSuite) get(h http.Handler, target string) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	h.ServeHTTP(response, httptest.NewRequest(http.MethodGet, target, nil))
	return response
}

func (suite *AppSuite) TestMemory() {
	h, store := suite.start(suite.newViper(`
server:
  address: 127.0.0.1:0
metrics:
  namespace: test
profiling:
  enabled: true
`))

	suite.IsType((*postalserver.MemoryStore)(nil), store)
	suite.Equal(http.StatusOK, suite.get(h, "/posts").Code)

	response := suite.get(h, postalserver.MetricsPath)
	suite.Equal(http.StatusOK, response.Code)
	suite.Contains(response.Body.String(), "test_server_requests_total")
	suite.Equal(http.StatusOK, suite.get(h, "/debug/pprof/cmdline").Code)
}

func (suite *AppSuite) TestRedis() {
	server := miniredis.RunT(suite.T())
	h, store := suite.start(suite.newViper(`
server:
  address: 127.0.0.1:0
redis:
  address: ` + server.Addr() + `
  keyPrefix: daemon
metrics:
  disabled: true
`))

	suite.IsType((*postalserver.RedisStore)(nil), store)

	_, err := store.CreatePost(context.Background(), postalserver.Post{Title: "t", Content: "c"})
	suite.Require().NoError(err)
	suite.True(server.Exists("daemon:post:1"))

	suite.Equal(http.StatusOK, suite.get(h, "/posts/1.json").Code)
	suite.Equal(http.StatusNotFound, suite.get(h, postalserver.MetricsPath).Code)
	suite.Equal(http.StatusNotFound, suite.get(h, "/debug/pprof/cmdline").Code)
}

func (suite *AppSuite) TestParseCommandLine() {
	file := filepath.Join(suite.T().TempDir(), "postald.yaml")
	suite.Require().NoError(os.WriteFile(file, []byte("server:\n  address: \":8080\"\n"), 0600))

	v, dev, err := parseCommandLine([]string{"--config", file, "--dev"})
	suite.Require().NoError(err)
	suite.True(dev)
	suite.Equal(":8080", v.GetString("server.address"))

	_, _, err = parseCommandLine([]string{"-f", filepath.Join(suite.T().TempDir(), "missing.yaml")})
	suite.Error(err)

	_, _, err = parseCommandLine([]string{"--help"})
	suite.ErrorIs(err, pflag.ErrHelp)
}

func (suite *AppSuite) TestRunUsage() {
	suite.Error(run([]string{"--nosuchflag"}))
	suite.NoError(run([]string{"--help"}))
}

func TestApp(t *testing.T) {
	suite.Run(t, new(AppSuite))
}
