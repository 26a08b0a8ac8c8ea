package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the mock wallet values. They are stand-ins for the lifetime of
// the process; nothing in the shell ever derives or rotates them.
const (
	DefaultChainID   = 1
	DefaultAccount   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	DefaultTxHash    = "0xb5c8bd9430b6cc87a0e2fe110ece6bf527fa4f170a4bc8cd032f768fc5219838"
	DefaultSignature = "0x30755ed65396facf86c53e6217c52b4daebe72aa4941d89635409de4c9c7f9466d4e9aaec7977f05e923889b33c0d0dd27d7226b6e6f56ce737465c5cfd04be41b"
)

// WalletConfig holds the mock wallet values served by the bridge.
type WalletConfig struct {
	ChainID   uint64 `yaml:"chain_id"`
	Account   string `yaml:"account"`
	TxHash    string `yaml:"tx_hash"`
	Signature string `yaml:"signature"`
}

// ConsentConfig selects how consent prompts are resolved.
type ConsentConfig struct {
	// Mode is one of "auto", "terminal", "queue".
	Mode string `yaml:"mode"`
	// Policy applies in auto mode: "approve" or "reject".
	Policy string `yaml:"policy"`
}

// ShellConfig holds configuration for the ethshell host binary.
type ShellConfig struct {
	Port       int
	ShellKey   string
	BridgePath string
	LogLevel   string
	ConfigFile string

	Wallet  WalletConfig
	Consent ConsentConfig
}

// BindFlags populates the struct with defaults from environment variables and
// binds command line flags so main can call flag.Parse().
func (c *ShellConfig) BindFlags() {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	c.Port = port
	c.ShellKey = getEnv("SHELL_KEY", "")
	c.BridgePath = getEnv("BRIDGE_PATH", "/bridge")
	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.ConfigFile = getEnv("CONFIG_FILE", "")
	c.Wallet = defaultWallet()
	c.Consent = ConsentConfig{
		Mode:   getEnv("CONSENT_MODE", "terminal"),
		Policy: getEnv("CONSENT_POLICY", "approve"),
	}

	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	flag.StringVar(&c.ShellKey, "shell-key", c.ShellKey, "bearer key content sessions must present on the bridge socket; leave empty to disable auth")
	flag.StringVar(&c.BridgePath, "bridge-path", c.BridgePath, "path content sessions use to establish WebSocket connections")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "optional YAML file overriding wallet and consent settings")
	flag.StringVar(&c.Consent.Mode, "consent-mode", c.Consent.Mode, "consent gate: auto, terminal or queue")
	flag.StringVar(&c.Consent.Policy, "consent-policy", c.Consent.Policy, "decision taken in auto mode: approve or reject")
}

// LoadFile applies a YAML config file on top of the bound values.
// Call after flag.Parse(); a missing path is an error, an empty path a no-op.
func (c *ShellConfig) LoadFile() error {
	if c.ConfigFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var f struct {
		Wallet  *WalletConfig  `yaml:"wallet"`
		Consent *ConsentConfig `yaml:"consent"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if f.Wallet != nil {
		if f.Wallet.ChainID != 0 {
			c.Wallet.ChainID = f.Wallet.ChainID
		}
		if f.Wallet.Account != "" {
			c.Wallet.Account = f.Wallet.Account
		}
		if f.Wallet.TxHash != "" {
			c.Wallet.TxHash = f.Wallet.TxHash
		}
		if f.Wallet.Signature != "" {
			c.Wallet.Signature = f.Wallet.Signature
		}
	}
	if f.Consent != nil {
		if f.Consent.Mode != "" {
			c.Consent.Mode = f.Consent.Mode
		}
		if f.Consent.Policy != "" {
			c.Consent.Policy = f.Consent.Policy
		}
	}
	return nil
}

// SimConfig holds configuration for the dappsim client binary.
type SimConfig struct {
	ServerURL         string
	ShellKey          string
	MethodCorrelation bool
	AutoConnectDelay  time.Duration
	RequestTimeout    time.Duration
	LogLevel          string
}

func (c *SimConfig) BindFlags() {
	c.ServerURL = getEnv("SERVER_URL", "ws://localhost:8080/bridge")
	c.ShellKey = getEnv("SHELL_KEY", "")
	c.LogLevel = getEnv("LOG_LEVEL", "info")
	acd, _ := time.ParseDuration(getEnv("AUTO_CONNECT_DELAY", "300ms"))
	c.AutoConnectDelay = acd

	flag.StringVar(&c.ServerURL, "server-url", c.ServerURL, "shell bridge websocket url")
	flag.StringVar(&c.ShellKey, "shell-key", c.ShellKey, "bridge authentication key")
	flag.BoolVar(&c.MethodCorrelation, "method-correlation", false, "correlate responses by method name instead of per-request ids")
	flag.DurationVar(&c.AutoConnectDelay, "auto-connect-delay", c.AutoConnectDelay, "delay before the automatic eth_requestAccounts; 0 disables")
	flag.DurationVar(&c.RequestTimeout, "request-timeout", 0, "per-request deadline; 0 means wait forever")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

func defaultWallet() WalletConfig {
	cid, _ := strconv.ParseUint(getEnv("CHAIN_ID", strconv.Itoa(DefaultChainID)), 10, 64)
	return WalletConfig{
		ChainID:   cid,
		Account:   getEnv("ACCOUNT", DefaultAccount),
		TxHash:    getEnv("TX_HASH", DefaultTxHash),
		Signature: getEnv("SIGNATURE", DefaultSignature),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
