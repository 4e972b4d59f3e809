// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalhttp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/httpaux/roundtrip"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RequestIDHeader is the header carrying the identifier of each outgoing request.
const RequestIDHeader = "X-Request-Id"

func orDefault(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		return http.DefaultTransport
	}

	return next
}

// RequestID returns a RoundTripperConstructor that sets RequestIDHeader to a
// random UUID on any request that does not already carry one.
func RequestID() RoundTripperConstructor {
	return func(next http.RoundTripper) http.RoundTripper {
		next = orDefault(next)
		return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			if len(request.Header.Get(RequestIDHeader)) == 0 {
				request = request.Clone(request.Context())
				if request.Header == nil {
					request.Header = make(http.Header)
				}

				request.Header.Set(RequestIDHeader, uuid.NewString())
			}

			return next.RoundTrip(request)
		})
	}
}

// Logging returns a RoundTripperConstructor that writes one debug entry per
// round trip to the given logger.  A nil logger disables logging.
func Logging(l *zap.Logger) RoundTripperConstructor {
	return func(next http.RoundTripper) http.RoundTripper {
		next = orDefault(next)
		if l == nil {
			return next
		}

		return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			start := time.Now()
			response, err := next.RoundTrip(request)

			fields := []zap.Field{
				zap.String("method", request.Method),
				zap.Stringer("url", request.URL),
				zap.String("requestID", request.Header.Get(RequestIDHeader)),
				zap.Duration("duration", time.Since(start)),
			}

			if err != nil {
				l.Debug("round trip failed", append(fields, zap.Error(err))...)
			} else {
				l.Debug("round trip", append(fields, zap.Int("status", response.StatusCode))...)
			}

			return response, err
		})
	}
}

// MetricsConfig names the client metrics registered by Metrics.
type MetricsConfig struct {
	// Namespace is the prometheus namespace.  The default is "postal".
	Namespace string

	// Subsystem is the prometheus subsystem.  The default is "client".
	Subsystem string
}

// Metrics registers an in-flight gauge, a request counter and a duration histogram
// with the given registerer, and returns a RoundTripperConstructor that instruments
// requests with all three.  Registration errors are aggregated.
func Metrics(r prometheus.Registerer, mc MetricsConfig) (RoundTripperConstructor, error) {
	if len(mc.Namespace) == 0 {
		mc.Namespace = "postal"
	}

	if len(mc.Subsystem) == 0 {
		mc.Subsystem = "client"
	}

	var (
		inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: mc.Namespace,
			Subsystem: mc.Subsystem,
			Name:      "in_flight_requests",
			Help:      "The number of requests currently in flight",
		})

		requests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: mc.Namespace,
				Subsystem: mc.Subsystem,
				Name:      "requests_total",
				Help:      "The total number of requests, by status code and method",
			},
			[]string{"code", "method"},
		)

		duration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: mc.Namespace,
				Subsystem: mc.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Request latencies, by status code and method",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		)
	)

	err := multierr.Combine(
		r.Register(inFlight),
		r.Register(requests),
		r.Register(duration),
	)

	if err != nil {
		return nil, err
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return promhttp.InstrumentRoundTripperInFlight(
			inFlight,
			promhttp.InstrumentRoundTripperCounter(
				requests,
				promhttp.InstrumentRoundTripperDuration(duration, orDefault(next)),
			),
		)
	}, nil
}
