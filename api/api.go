// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/api/doc"
	"github.com/vechain/mmrledger/api/mmr"
	"github.com/vechain/mmrledger/api/staking"
	"github.com/vechain/mmrledger/api/subscriptions"
	"github.com/vechain/mmrledger/log"
	stakingledger "github.com/vechain/mmrledger/staking"
)

var logger = log.WithContext("pkg", "api")

// VersionHeader exposes the api version on every response.
const VersionHeader = "x-mmrledger-ver"

type Options struct {
	AllowedOrigins     string
	ReadOnly           bool
	PprofOn            bool
	EnableReqLogger    *atomic.Bool // toggled at runtime by the admin server
	SlowQueryThreshold time.Duration
	EnableMetrics      bool
}

// New return api router
func New(
	acc *accumulator.Accumulator,
	staker *stakingledger.Staker,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/mmrledger.yaml", http.StatusTemporaryRedirect)
		})

	mmr.New(acc).
		Mount(router, "/mmr", opts.ReadOnly)
	subs := subscriptions.New(acc, origins)
	subs.Mount(router, "/mmr/subscriptions")
	if staker != nil {
		staking.New(staker).
			Mount(router, "/staking")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(VersionHeader, doc.Version())
			next.ServeHTTP(w, r)
		})
	})

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{VersionHeader, RequestIDHeader}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = RequestLoggerHandler(handler, logger, opts.EnableReqLogger, opts.SlowQueryThreshold)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
