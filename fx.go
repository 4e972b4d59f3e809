// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/postal/internal/appfx"
	"github.com/xmidt-org/postal/postalhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ClientIn is the set of dependencies used to build a Client within fx.
type ClientIn struct {
	fx.In

	Config Config

	// Logger is the optional logger for the Client.
	Logger *zap.Logger `optional:"true"`

	// Registerer is the optional prometheus registry.  If supplied, client
	// requests are instrumented.
	Registerer prometheus.Registerer `optional:"true"`

	// Options are optional, additional options for the Client.
	Options []Option `optional:"true"`
}

// NewClient is an fx constructor for a Client.
func NewClient(in ClientIn) (*Client, error) {
	opts := append([]Option{WithLogger(in.Logger)}, in.Options...)
	if in.Registerer != nil {
		m, err := postalhttp.Metrics(in.Registerer, postalhttp.MetricsConfig{})
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithMiddleware(m))
	}

	return New(in.Config, opts...)
}

// Provide returns an fx.Option that unmarshals a Config from the given viper
// key and provides a *Client built from it.  DefaultConfig supplies anything
// missing from configuration.  The enclosing fx.App must supply a *viper.Viper.
func Provide(key string) fx.Option {
	return fx.Provide(
		appfx.UnmarshalKey(key, DefaultConfig()),
		NewClient,
	)
}
