// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postalserver

import (
	"net/http/pprof"
	rpprof "runtime/pprof"
	"strings"

	"github.com/gorilla/mux"
)

// DefaultProfilingPrefix is the path prefix of the pprof handlers when
// profiling is enabled without a prefix.
const DefaultProfilingPrefix = "/debug/pprof"

// ConfigureProfiling maps the net/http/pprof handlers beneath prefix.  An empty
// prefix uses DefaultProfilingPrefix.
func ConfigureProfiling(r *mux.Router, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	if len(prefix) == 0 {
		prefix = DefaultProfilingPrefix
	}

	r.HandleFunc(prefix, pprof.Index)
	sub := r.PathPrefix(prefix + "/").Subrouter()
	sub.Path("/").HandlerFunc(pprof.Index)
	sub.Path("/cmdline").HandlerFunc(pprof.Cmdline)
	sub.Path("/profile").HandlerFunc(pprof.Profile)
	sub.Path("/symbol").HandlerFunc(pprof.Symbol)
	sub.Path("/trace").HandlerFunc(pprof.Trace)

	// gorilla/mux matches exactly, so each named profile needs its own route
	for _, p := range rpprof.Profiles() {
		sub.Path("/" + p.Name()).Handler(pprof.Handler(p.Name()))
	}
}
