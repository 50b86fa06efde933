// Command ledgerd is the demo daemon wiring the Publisher Attention and
// Contribution Engine to a SQLite-backed reference host (hostref), a chi
// HTTP admin API, a websocket tab-event ingestion socket, and a Prometheus
// /metrics endpoint. It is grounded on nhbchain's services/otc-gateway
// daemon composition style: one main that loads config, opens a DB, builds
// a server, and serves.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"attnledger/config"
	"attnledger/core/ledger"
	"attnledger/core/types"
	"attnledger/hostref"
	"attnledger/observability/logging"
)

func main() {
	configPath := flag.String("config", "ledgerd.toml", "path to the engine configuration file")
	dbPath := flag.String("db", "", "path to the reference host's SQLite database (defaults to DataDir/ledger.sqlite from the config file)")
	registryURL := flag.String("registry-url", "https://publishers.example/registry.json", "publisher registry refresh URL")
	addr := flag.String("addr", ":8088", "HTTP listen address for the admin API and websocket ingestion")
	flag.Parse()

	logger := logging.Setup("ledgerd", os.Getenv("LEDGERD_ENV"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	dbFile := *dbPath
	if dbFile == "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			logger.Error("create data dir", "error", err, "dir", cfg.DataDir)
			os.Exit(1)
		}
		dbFile = filepath.Join(cfg.DataDir, "ledger.sqlite")
	}

	host, err := hostref.Open(dbFile, *registryURL)
	if err != nil {
		logger.Error("open host reference store", "error", err)
		os.Exit(1)
	}

	engine := ledger.New(*cfg, ledger.Host{
		LedgerState:    host,
		PublisherState: host,
		PublisherInfo:  host,
		Registry:       host,
		Clock:          host,
		Entropy:        host,
		GUID:           host,
		Timer:          host,
	})
	engine.OnWalletInitialized = func(result types.Result) {
		logger.Info("wallet initialized", "result", result.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := engine.Initialize(ctx); err != nil {
		logger.Error("initialize ledger", "error", err)
		os.Exit(1)
	}

	api := newAdminAPI(engine, logger)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           api.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("serving admin API and tab ingestion socket", "addr", *addr)
		return httpServer.ListenAndServe()
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != http.ErrServerClosed {
		logger.Error("ledgerd exited with error", "error", err)
		os.Exit(1)
	}
}
