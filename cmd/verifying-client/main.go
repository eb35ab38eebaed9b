package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/certen/verifying-client/pkg/client"
	"github.com/certen/verifying-client/pkg/config"
	"github.com/certen/verifying-client/pkg/kvdb"
	"github.com/certen/verifying-client/pkg/logging"
	"github.com/certen/verifying-client/pkg/storage"
	"github.com/certen/verifying-client/pkg/transport"
	"github.com/certen/verifying-client/pkg/types"
)

func main() {
	var (
		serverURL   = flag.String("server-url", "", "RPC server URL (overrides VERIFYING_CLIENT_SERVER_URL)")
		listenAddr  = flag.String("listen-addr", ":9090", "address the /healthz and /metrics endpoints listen on")
		dataDir     = flag.String("data-dir", "./data", "directory holding the persisted trusted state")
		showHelp    = flag.Bool("help", false, "show help message")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	log := logging.NewLogger(&logging.Config{Level: cfg.SlogLevel(), Format: cfg.Logging.Format, AddSource: cfg.Logging.AddSource})
	logging.SetGlobalLogger(log)
	log.Info("starting verifying-client", "server_url", cfg.ServerURL)

	waypointHash, err := decodeWaypointHash(cfg.Waypoint.Hash)
	if err != nil {
		log.Error("invalid waypoint hash", "error", err)
		os.Exit(1)
	}

	persist, err := openStorage(*dataDir)
	if err != nil {
		log.Error("failed to open trusted-state storage", "error", err)
		os.Exit(1)
	}

	inner := transport.NewHTTPClient(cfg.ServerURL, 30*time.Second)
	c, err := client.NewVerifyingClient(inner, types.Epoch(cfg.Waypoint.Epoch), waypointHash, persist, log)
	if err != nil {
		log.Error("failed to construct verifying client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Sync(ctx); err != nil {
		log.Warn("initial sync did not complete", "error", err)
	} else {
		log.Info("initial sync complete", "epoch", c.TrustedState().Epoch, "version", c.Version())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ts := c.TrustedState()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"epoch":%d,"version":%d,"has_accumulator":%t}`, ts.Epoch, ts.Version, ts.HasAccumulator())
	})
	mux.Handle("/metrics", promhttp.HandlerFor(c.Metrics().Registry(), promhttp.HandlerOpts{}))

	httpServer := &http.Server{Addr: *listenAddr, Handler: mux}
	go func() {
		log.Info("serving health and metrics", "addr", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped unexpectedly", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown error", "error", err)
	}
}

func decodeWaypointHash(hexHash string) (types.HashValue, error) {
	var h types.HashValue
	if hexHash == "" {
		return h, nil
	}
	raw, err := hex.DecodeString(hexHash)
	if err != nil {
		return h, err
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("waypoint hash must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func openStorage(dataDir string) (types.Storage, error) {
	if dataDir == "" {
		return storage.NewMemStore(), nil
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, err
	}
	db, err := dbm.NewGoLevelDB("verifying-client", dataDir)
	if err != nil {
		return nil, err
	}
	return storage.NewCometStore(kvdb.NewKVAdapter(db)), nil
}

func printHelp() {
	fmt.Println("verifying-client: a BFT light-client core for querying and verifying ledger state")
	fmt.Println()
	fmt.Println("Environment variables (see pkg/config):")
	fmt.Println("  VERIFYING_CLIENT_SERVER_URL   RPC endpoint to batch-query")
	fmt.Println("  VERIFYING_CLIENT_WAYPOINT_EPOCH / VERIFYING_CLIENT_WAYPOINT_HASH")
	fmt.Println("  VERIFYING_CLIENT_WAIT_TIMEOUT / VERIFYING_CLIENT_WAIT_DELAY")
	fmt.Println("  VERIFYING_CLIENT_LOG_LEVEL")
	fmt.Println("  VERIFYING_CLIENT_CONFIG_FILE  optional YAML file overlay")
}
