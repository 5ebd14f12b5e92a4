// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/lvldb"
	"github.com/vechain/mmrledger/metrics"
	"github.com/vechain/mmrledger/staking"
	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/thor"
)

// nodeEntryBytes is the estimated memory held by one cached node hash.
const nodeEntryBytes = 128

func initLogger(ctx *cli.Context, w io.Writer) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))
	log.SetDefault(log.NewLogger(log.NewHandler(w, ctx.Bool(jsonLogsFlag.Name), level)))
	return level
}

func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.mmrledger")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.mmrledger")
		default:
			return filepath.Join(home, ".org.vechain.mmrledger")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("create data dir [%v]: %v", dataDir, err)
	}
	return dataDir, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// ledger bundles the stores opened by a command.
type ledger struct {
	db     *lvldb.LevelDB
	acc    *accumulator.Accumulator
	staker *staking.Staker
}

func (l *ledger) Close() {
	logger.Info("closing main database...")
	if err := l.db.Close(); err != nil {
		logger.Warn("failed to close main database", "err", err)
	}
}

func openLedger(ctx *cli.Context) (*ledger, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	params, err := cfg.Staking.params()
	if err != nil {
		return nil, err
	}
	hasher, err := thor.HasherByName(ctx.String(hasherFlag.Name))
	if err != nil {
		return nil, err
	}

	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: suggestFDCache(),
	})
	if err != nil {
		return nil, fmt.Errorf("open main database [%v]: %v", dir, err)
	}

	acc, err := accumulator.New(db, accumulator.Options{
		Hasher:        hasher,
		NodeCacheSize: cacheMB / 4 * 1024 * 1024 / nodeEntryBytes,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &ledger{
		db:     db,
		acc:    acc,
		staker: staking.NewStaker(db, state.NewCache(cacheMB/4), params),
	}, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func listen(addr, name string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}
	return listener, nil
}

func newMetricsServer() *http.Server {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return &http.Server{
		Handler:           handlers.CompressHandler(router),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
}
