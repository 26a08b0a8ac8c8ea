package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/ethshell/ethshell/internal/consent"
	"github.com/ethshell/ethshell/internal/logx"
	"github.com/ethshell/ethshell/internal/metrics"
	"github.com/ethshell/ethshell/internal/wallet"
)

// Rejection messages for the consent-gated methods.
const (
	msgRejectedConnection  = "User rejected connection"
	msgRejectedTransaction = "User rejected transaction"
	msgRejectedSigning     = "User rejected signing"
)

// Handler answers bridge requests from the mock wallet state, consulting the
// consent gate before any method with real-world effect.
type Handler struct {
	state *wallet.State
	gate  consent.Gate
}

// NewHandler builds a handler over the given state and gate.
func NewHandler(state *wallet.State, gate consent.Gate) *Handler {
	return &Handler{state: state, gate: gate}
}

// Handle produces exactly one Response for the Request. Gated methods block
// until the consent gate decides; callers that must keep serving other
// traffic run Handle on its own goroutine.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := h.dispatch(ctx, req)
	metrics.RecordRequest(req.Method, resp.Success)
	metrics.ObserveRequestDuration(req.Method, time.Since(start))
	return resp
}

func (h *Handler) dispatch(ctx context.Context, req Request) Response {
	switch req.Method {
	case "eth_requestAccounts":
		p := h.prompt(req, "Connection request", fmt.Sprintf("Share account %s with this site", h.state.Accounts()[0]))
		if h.decide(ctx, p) == consent.Approved {
			return success(req, h.state.Accounts())
		}
		return failure(req, msgRejectedConnection)
	case "eth_chainId":
		return success(req, h.state.ChainIDHex())
	case "net_version":
		return success(req, h.state.NetworkVersion())
	case "eth_accounts":
		return success(req, h.state.Accounts())
	case "eth_sendTransaction":
		p := h.prompt(req, "Confirm transaction", txDetail(req.Params))
		if h.decide(ctx, p) == consent.Approved {
			return success(req, h.state.TxHash())
		}
		return failure(req, msgRejectedTransaction)
	case "wallet_switchEthereumChain":
		return success(req, nil)
	case "personal_sign":
		p := h.prompt(req, "Signature request", signDetail(req.Params))
		if h.decide(ctx, p) == consent.Approved {
			return success(req, h.state.Signature())
		}
		return failure(req, msgRejectedSigning)
	default:
		logx.Log.Warn().Str("method", req.Method).Msg("unsupported method")
		return failure(req, fmt.Sprintf("Unsupported method: %s", req.Method))
	}
}

func (h *Handler) prompt(req Request, title, detail string) consent.Prompt {
	return consent.Prompt{
		ID:          uuid.NewString(),
		Method:      req.Method,
		Title:       title,
		Detail:      detail,
		RequestedAt: time.Now(),
	}
}

func (h *Handler) decide(ctx context.Context, p consent.Prompt) consent.Decision {
	d := h.gate.Decide(ctx, p)
	metrics.RecordConsent(p.Method, d == consent.Approved)
	logx.Log.Info().Str("method", p.Method).Str("prompt_id", p.ID).Str("decision", d.String()).Msg("consent")
	return d
}

// txDetail summarizes the first transaction object in params. Destructuring
// is best effort: missing or malformed fields are simply left out.
func txDetail(params json.RawMessage) string {
	var txs []struct {
		From  string `json:"from"`
		To    string `json:"to"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(params, &txs); err != nil || len(txs) == 0 {
		return "Send a transaction"
	}
	tx := txs[0]
	detail := "Send a transaction"
	if tx.To != "" {
		detail += fmt.Sprintf("\nTo: %s", tx.To)
	}
	if tx.Value != "" {
		if wei, err := hexutil.DecodeBig(tx.Value); err == nil {
			detail += fmt.Sprintf("\nValue: %s wei", wei.String())
		} else {
			detail += fmt.Sprintf("\nValue: %s", tx.Value)
		}
	}
	return detail
}

// signDetail renders the personal_sign message and signing address. The
// message arrives hex-encoded; it is shown as text when it decodes to valid
// UTF-8, raw otherwise.
func signDetail(params json.RawMessage) string {
	var args []string
	_ = json.Unmarshal(params, &args)
	msg, addr := "", ""
	if len(args) > 0 {
		msg = args[0]
	}
	if len(args) > 1 {
		addr = args[1]
	}
	if b, err := hexutil.Decode(msg); err == nil && utf8.Valid(b) {
		msg = string(b)
	}
	detail := fmt.Sprintf("Message: %s", msg)
	if addr != "" {
		detail += fmt.Sprintf("\nSigning as: %s", addr)
	}
	return detail
}
