// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: log level, request logging and health.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/api/utils"
	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/thor"
)

var logger = log.WithContext("pkg", "admin")

type LogLevelRequest struct {
	Level string `json:"level"`
}

type LogLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

type Health struct {
	Healthy   bool          `json:"healthy"`
	Root      *thor.Bytes32 `json:"root,omitempty"`
	LeafCount uint64        `json:"leafCount"`
	Hasher    string        `json:"hasher"`
	Uptime    string        `json:"uptime"`
	Error     string        `json:"error,omitempty"`
}

type Admin struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
	acc      *accumulator.Accumulator
	started  time.Time
}

// New returns the admin handler. apiLogs may be nil when request logging is not installed.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, acc *accumulator.Accumulator) http.HandlerFunc {
	a := &Admin{
		logLevel: logLevel,
		apiLogs:  apiLogs,
		acc:      acc,
		started:  time.Now(),
	}
	router := mux.NewRouter()
	a.Mount(router, "/admin")
	return handlers.CompressHandler(router).ServeHTTP
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePostLogLevel))

	if a.apiLogs != nil {
		sub.Path("/apilogs").
			Methods(http.MethodGet).
			Name("GET /admin/apilogs").
			HandlerFunc(utils.WrapHandlerFunc(a.handleGetAPILogs))
		sub.Path("/apilogs").
			Methods(http.MethodPost).
			Name("POST /admin/apilogs").
			HandlerFunc(utils.WrapHandlerFunc(a.handlePostAPILogs))
	}

	sub.Path("/health").
		Methods(http.MethodGet).
		Name("GET /admin/health").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetHealth))
}

func (a *Admin) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogLevelResponse{CurrentLevel: log.LevelString(a.logLevel.Level())})
}

func (a *Admin) handlePostLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req LogLevelRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	switch req.Level {
	case "trace":
		a.logLevel.Set(log.LevelTrace)
	case "debug":
		a.logLevel.Set(log.LevelDebug)
	case "info":
		a.logLevel.Set(log.LevelInfo)
	case "warn":
		a.logLevel.Set(log.LevelWarn)
	case "error":
		a.logLevel.Set(log.LevelError)
	case "crit":
		a.logLevel.Set(log.LevelCrit)
	default:
		return utils.BadRequest(errors.Errorf("invalid log level %q", req.Level))
	}
	logger.Info("log level changed", "level", req.Level)
	return a.handleGetLogLevel(w, r)
}

func (a *Admin) handleGetAPILogs(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}

func (a *Admin) handlePostAPILogs(w http.ResponseWriter, r *http.Request) error {
	var req LogStatus
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	a.apiLogs.Store(req.Enabled)
	logger.Info("api logs updated", "enabled", req.Enabled)
	return a.handleGetAPILogs(w, r)
}

// handleGetHealth reports unhealthy when the current root cannot be computed.
func (a *Admin) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	h := Health{
		Hasher: a.acc.Hasher().Name(),
		Uptime: time.Since(a.started).Truncate(time.Second).String(),
	}
	root, count, err := a.acc.Root()
	h.LeafCount = count
	if err != nil {
		h.Error = err.Error()
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
		return json.NewEncoder(w).Encode(h)
	}
	h.Healthy = true
	h.Root = &root
	return utils.WriteJSON(w, h)
}
