// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package appfx

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Logger establishes l as both the fx event logger and a global *zap.Logger
// component in the enclosing fx.App.  A nil logger is replaced with zap.NewNop().
func Logger(l *zap.Logger) fx.Option {
	if l == nil {
		l = zap.NewNop()
	}

	return fx.Options(
		fx.Supply(l),
		fx.WithLogger(
			func() fxevent.Logger {
				return &fxevent.ZapLogger{Logger: l}
			},
		),
	)
}

// NewLogger builds a production zap logger, switching to development
// settings when dev is true.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
