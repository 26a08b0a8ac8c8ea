package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ethshell/ethshell/core/secret"
	"github.com/ethshell/ethshell/internal/bridge"
	"github.com/ethshell/ethshell/internal/config"
	"github.com/ethshell/ethshell/internal/consent"
	"github.com/ethshell/ethshell/internal/logx"
	"github.com/ethshell/ethshell/internal/metrics"
	"github.com/ethshell/ethshell/internal/server"
	"github.com/ethshell/ethshell/internal/wallet"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	var cfg config.ShellConfig
	cfg.BindFlags()
	flag.Parse()
	logx.Configure(cfg.LogLevel)
	if err := cfg.LoadFile(); err != nil {
		logx.Log.Fatal().Err(err).Msg("config error")
	}

	state, err := wallet.New(cfg.Wallet)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("wallet config error")
	}

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	var gate consent.Gate
	var queue *consent.Queue
	switch cfg.Consent.Mode {
	case "auto":
		gate = consent.Policy(cfg.Consent.Policy != "reject")
	case "queue":
		queue = consent.NewQueue()
		gate = queue
	case "terminal", "":
		gate = consent.NewTerminal(os.Stdin, os.Stderr)
	default:
		logx.Log.Fatal().Str("mode", cfg.Consent.Mode).Msg("unknown consent mode")
	}

	h := bridge.NewHandler(state, gate)
	reg := bridge.NewRegistry()
	handler := server.New(h, reg, state, queue, cfg)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		if queue != nil {
			queue.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.ShellKey != "" {
		logx.Log.Info().Str("shell_key", secret.Mask(cfg.ShellKey)).Msg("bridge auth enabled")
	}
	logx.Log.Info().
		Int("port", cfg.Port).
		Str("bridge_path", cfg.BridgePath).
		Str("chain_id", state.ChainIDHex()).
		Str("account", state.Accounts()[0]).
		Str("consent_mode", cfg.Consent.Mode).
		Msg("shell starting")

	if err := g.Wait(); err != nil {
		logx.Log.Fatal().Err(err).Msg("shell error")
	}
}
