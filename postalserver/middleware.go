// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Logging returns a middleware that logs each request at info level.
func Logging(l *zap.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: response, status: http.StatusOK}
			next.ServeHTTP(sw, request)

			l.Info(
				"request",
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", request.Header.Get("X-Request-Id")),
			)
		})
	}
}

// Recover returns a middleware that turns a handler panic into a 500 JSON response.
func Recover(l *zap.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}

					l.Error("handler panic", zap.Any("panic", r), zap.String("path", request.URL.Path))
					writeError(response, http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(response, request)
		})
	}
}

// Metrics registers an in-flight gauge, a request counter and a duration
// histogram for the server, and returns a middleware that instruments
// requests with them.
func Metrics(r prometheus.Registerer, namespace string) (alice.Constructor, error) {
	if len(namespace) == 0 {
		namespace = "postal"
	}

	var (
		inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "in_flight_requests",
			Help:      "The number of requests currently being served",
		})

		requests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "requests_total",
				Help:      "The total number of requests served, by status code and method",
			},
			[]string{"code", "method"},
		)

		duration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "request_duration_seconds",
				Help:      "Time spent serving requests, by status code and method",
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

	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(
			inFlight,
			promhttp.InstrumentHandlerCounter(
				requests,
				promhttp.InstrumentHandlerDuration(duration, next),
			),
		)
	}, nil
}
