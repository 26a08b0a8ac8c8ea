// Package server wires the shell's HTTP surface: the embedded demo page, the
// bridge websocket endpoint, consent endpoints when the queue gate is in use,
// and the usual health/metrics/status plumbing.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethshell/ethshell/internal/bridge"
	"github.com/ethshell/ethshell/internal/config"
	"github.com/ethshell/ethshell/internal/consent"
	"github.com/ethshell/ethshell/internal/logx"
	"github.com/ethshell/ethshell/internal/wallet"
)

// New constructs the HTTP handler for the shell. queue may be nil when
// consent is resolved elsewhere (terminal or auto gate).
func New(h *bridge.Handler, reg *bridge.Registry, state *wallet.State, queue *consent.Queue, cfg config.ShellConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/", DappPage())
	r.Handle(cfg.BridgePath, bridge.Endpoint(h, reg, cfg.ShellKey))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/status", statusHandler(reg, state))
	if queue != nil {
		r.Mount("/api/consents", queue.Routes())
	}
	return r
}

type statusPayload struct {
	ChainID        string               `json:"chain_id"`
	NetworkVersion string               `json:"network_version"`
	Accounts       []string             `json:"accounts"`
	Sessions       []bridge.SessionInfo `json:"sessions"`
}

func statusHandler(reg *bridge.Registry, state *wallet.State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statusPayload{
			ChainID:        state.ChainIDHex(),
			NetworkVersion: state.NetworkVersion(),
			Accounts:       state.Accounts(),
			Sessions:       reg.Sessions(),
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chiMiddleware.GetReqID(r.Context())
		logx.Log.Debug().Str("request_id", reqID).Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
