// dappsim drives a running shell the way an embedded page would: it installs
// the provider, lets the auto-connect flow fire, then sweeps the supported
// methods and prints each outcome.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethshell/ethshell/internal/config"
	"github.com/ethshell/ethshell/internal/logx"
	"github.com/ethshell/ethshell/internal/provider"
)

func main() {
	var cfg config.SimConfig
	cfg.BindFlags()
	flag.Parse()
	logx.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var slot provider.Slot
	p, err := slot.Install(ctx, provider.Options{
		URL:               cfg.ServerURL,
		ShellKey:          cfg.ShellKey,
		MethodCorrelation: cfg.MethodCorrelation,
		AutoConnectDelay:  cfg.AutoConnectDelay,
		RequestTimeout:    cfg.RequestTimeout,
	})
	if err != nil {
		logx.Log.Fatal().Err(err).Str("url", cfg.ServerURL).Msg("bridge dial failed")
	}
	defer func() { _ = p.Close() }()

	account := call(ctx, p, "eth_accounts", nil)
	call(ctx, p, "eth_chainId", nil)
	call(ctx, p, "net_version", nil)
	call(ctx, p, "eth_requestAccounts", nil)
	call(ctx, p, "eth_sendTransaction", []any{map[string]string{
		"to":    "0x0000000000000000000000000000000000000001",
		"value": "0xde0b6b3a7640000",
	}})
	call(ctx, p, "wallet_switchEthereumChain", []any{map[string]string{"chainId": "0x89"}})
	call(ctx, p, "personal_sign", []string{hexutil.Encode([]byte("hello from dappsim")), account})
	call(ctx, p, "eth_foo", nil)
}

// call performs one request and logs the outcome. For eth_accounts it
// returns the first account so later calls can sign as it.
func call(ctx context.Context, p *provider.Provider, method string, params any) string {
	res, err := p.Request(ctx, method, params)
	if err != nil {
		logx.Log.Warn().Err(err).Str("method", method).Msg("call failed")
		return ""
	}
	logx.Log.Info().Str("method", method).RawJSON("result", res).Msg("call ok")
	if method == "eth_accounts" {
		var accounts []string
		if json.Unmarshal(res, &accounts) == nil && len(accounts) > 0 {
			return accounts[0]
		}
	}
	return ""
}
