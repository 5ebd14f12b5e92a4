// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mmrledger/api"
	"github.com/vechain/mmrledger/api/admin"
	"github.com/vechain/mmrledger/metrics"
)

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx, os.Stderr)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	root, count, err := l.acc.Root()
	if err != nil {
		return err
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(l.acc, l.staker, api.Options{
		AllowedOrigins:     ctx.String(apiCorsFlag.Name),
		ReadOnly:           ctx.Bool(apiReadOnlyFlag.Name),
		PprofOn:            ctx.Bool(pprofFlag.Name),
		EnableReqLogger:    &apiLogs,
		SlowQueryThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:      ctx.Bool(enableMetricsFlag.Name),
	})

	apiListener, err := listen(ctx.String(apiAddrFlag.Name), "API")
	if err != nil {
		return err
	}
	servers := []*http.Server{{Handler: handler, ReadHeaderTimeout: time.Second}}
	listeners := []net.Listener{apiListener}
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsListener, err := listen(ctx.String(metricsAddrFlag.Name), "metrics")
		if err != nil {
			apiListener.Close()
			return err
		}
		servers = append(servers, newMetricsServer())
		listeners = append(listeners, metricsListener)
		logger.Info("metrics server started", "url", "http://"+metricsListener.Addr().String()+"/metrics")
	}
	if ctx.Bool(enableAdminFlag.Name) {
		adminListener, err := listen(ctx.String(adminAddrFlag.Name), "admin")
		if err != nil {
			for _, ln := range listeners {
				ln.Close()
			}
			return err
		}
		servers = append(servers, &http.Server{
			Handler:           admin.New(logLevel, &apiLogs, l.acc),
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
		})
		listeners = append(listeners, adminListener)
		logger.Info("admin server started", "url", "http://"+adminListener.Addr().String()+"/admin")
	}

	logger.Info("API server started",
		"url", "http://"+apiListener.Addr().String()+"/",
		"leafCount", count,
		"root", root,
		"hasher", l.acc.Hasher().Name(),
	)

	g, gctx := errgroup.WithContext(handleExitSignal())
	for i, srv := range servers {
		g.Go(func() error {
			if err := srv.Serve(listeners[i]); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		closeSubs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shutdown server", "err", err)
			}
		}
		return nil
	})
	return g.Wait()
}
