// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/postal/internal/appfx"
	"github.com/xmidt-org/postal/postalhttp"
	"github.com/xmidt-org/postal/postalserver"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const applicationName = "postald"

// MetricsConfig configures the server's prometheus metrics.
type MetricsConfig struct {
	// Namespace is the prometheus namespace of the request metrics.
	Namespace string

	// Disabled turns off both request metrics and the metrics endpoint.
	Disabled bool
}

// ProfilingConfig configures the pprof handlers.
type ProfilingConfig struct {
	// Enabled exposes the pprof handlers on the server.
	Enabled bool

	// Prefix is the path prefix of the pprof handlers.
	Prefix string
}

// parseCommandLine parses the arguments and loads configuration.  Environment
// variables prefixed with POSTALD_ override the configuration file.
func parseCommandLine(args []string) (*viper.Viper, bool, error) {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	file := fs.StringP("config", "f", "", "the configuration file")
	dev := fs.Bool("dev", false, "use development logging")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(applicationName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if len(*file) > 0 {
		v.SetConfigFile(*file)
		if err := v.ReadInConfig(); err != nil {
			return nil, false, err
		}
	}

	return v, *dev, nil
}

// newApp assembles the daemon.  The store is Redis when redis.address is
// configured, and in memory otherwise.
func newApp(v *viper.Viper, logger *zap.Logger, extra ...fx.Option) *fx.App {
	useRedis := len(v.GetString("redis.address")) > 0
	return fx.New(
		appfx.Logger(logger),
		fx.Supply(v),
		fx.Provide(
			appfx.UnmarshalKey("server", postalhttp.ServerConfig{Address: ":3000"}),
			appfx.UnmarshalKey("metrics", MetricsConfig{}),
			appfx.UnmarshalKey("profiling", ProfilingConfig{}),
			newRegistry,
		),
		appfx.If(useRedis).Then(
			fx.Provide(
				appfx.UnmarshalKey("redis", postalserver.RedisConfig{}),
				newRedisStore,
			),
		),
		appfx.IfNot(useRedis).Then(
			fx.Provide(newMemoryStore),
		),
		fx.Provide(
			newHandler,
			newServer,
		),
		fx.Invoke(bindServer),
		fx.Options(extra...),
	)
}

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func newMemoryStore() postalserver.Store {
	return postalserver.NewMemoryStore(nil)
}

func newRedisStore(lc fx.Lifecycle, rc postalserver.RedisConfig, l *zap.Logger) postalserver.Store {
	client := rc.NewClient()
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	l.Info("using redis", zap.String("address", rc.Address), zap.Int("db", rc.DB))
	return postalserver.NewRedisStore(client, rc.KeyPrefix, nil)
}

// HandlerIn holds the dependencies of the daemon's handler.
type HandlerIn struct {
	fx.In

	Store     postalserver.Store
	Logger    *zap.Logger
	Metrics   MetricsConfig
	Profiling ProfilingConfig
	Registry  *prometheus.Registry
}

func newHandler(in HandlerIn) (http.Handler, error) {
	o := postalserver.RouterOptions{
		Logger:          in.Logger,
		Namespace:       in.Metrics.Namespace,
		Profiling:       in.Profiling.Enabled,
		ProfilingPrefix: in.Profiling.Prefix,
	}

	if !in.Metrics.Disabled {
		o.Registerer = in.Registry
		o.Gatherer = in.Registry
	}

	return postalserver.NewRouter(in.Store, o)
}

func newServer(sc postalhttp.ServerConfig, h http.Handler) *http.Server {
	return sc.NewServer(h)
}

func bindServer(lc fx.Lifecycle, sh fx.Shutdowner, sc postalhttp.ServerConfig, s *http.Server) {
	postalhttp.BindServer(lc, sh, s, sc.Listen)
}

func run(args []string) error {
	v, dev, err := parseCommandLine(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	} else if err != nil {
		return appfx.Usage(err)
	}

	logger, err := appfx.NewLogger(dev)
	if err != nil {
		return err
	}

	defer logger.Sync() //nolint:errcheck

	app := newApp(v, logger)
	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}
