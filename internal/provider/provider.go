// Package provider implements the content-side wallet capability: a handle
// whose Request calls become bridge frames and settle when the matching
// response frame arrives from the host.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ethshell/ethshell/internal/bridge"
	"github.com/ethshell/ethshell/internal/logx"
)

// defaultErrorMessage stands in for a failed response that carries no
// errorMessage of its own.
const defaultErrorMessage = "Request failed"

// ErrClosed indicates the provider connection is gone.
var ErrClosed = errors.New("provider closed")

// RPCError is a failed response surfaced to the caller.
type RPCError struct {
	Method  string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// Options configure Connect.
type Options struct {
	// URL of the host bridge websocket endpoint.
	URL string
	// ShellKey is presented as a bearer token when the host requires one.
	ShellKey string
	// MethodCorrelation enables the legacy wire mode: requests carry no id
	// and an inbound response settles the oldest pending call for its
	// method. Two concurrent calls to the same method then have undefined
	// pairing; callers are expected to keep at most one call per method in
	// flight.
	MethodCorrelation bool
	// RequestTimeout bounds each call. Zero means no deadline: a call
	// with no matching response pends until its context is done.
	RequestTimeout time.Duration
	// AutoConnectDelay is the pause before the provider issues its own
	// eth_requestAccounts, emulating a dapp's connect flow. Zero or
	// negative leaves auto-connect off.
	AutoConnectDelay time.Duration
}

type pendingCall struct {
	id     string
	method string
	ch     chan bridge.Response
}

// Provider is an installed wallet capability bound to one bridge connection.
type Provider struct {
	opts   Options
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	pending  map[string]*pendingCall   // id-correlated calls
	byMethod map[string][]*pendingCall // compatibility mode, registration order
}

// Slot is an explicit installation point for a provider, mirroring the
// install-once guard of an in-page capability object without ambient global
// state. Install is idempotent: while the installed provider is alive,
// further calls return the same handle and dial nothing.
type Slot struct {
	mu sync.Mutex
	p  *Provider
}

// Install returns the slot's live provider, connecting one if needed.
func (s *Slot) Install(ctx context.Context, opts Options) (*Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p != nil && !s.p.Closed() {
		return s.p, nil
	}
	p, err := Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.p = p
	return p, nil
}

// Connect dials the host bridge and starts the provider's read loop. With a
// positive AutoConnectDelay it also starts the auto-connect flow.
func Connect(ctx context.Context, opts Options) (*Provider, error) {
	var hdr http.Header
	if opts.ShellKey != "" {
		hdr = http.Header{"Authorization": {"Bearer " + opts.ShellKey}}
	}
	conn, _, err := websocket.Dial(ctx, opts.URL, &websocket.DialOptions{HTTPHeader: hdr})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Provider{
		opts:     opts,
		conn:     conn,
		cancel:   cancel,
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingCall),
		byMethod: make(map[string][]*pendingCall),
	}
	go p.readLoop(ctx)
	if opts.AutoConnectDelay > 0 {
		go p.autoConnect(ctx)
	}
	return p, nil
}

// Request performs one wallet call and waits for its response. A successful
// response yields its result; a failed one yields an *RPCError. Without a
// RequestTimeout the wait is unbounded short of ctx or the connection.
func (p *Provider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := bridge.Request{Type: bridge.TypeRequest, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		req.Params = raw
	}
	if !p.opts.MethodCorrelation {
		req.ID = uuid.NewString()
	}

	call := &pendingCall{id: req.ID, method: method, ch: make(chan bridge.Response, 1)}
	if err := p.register(call); err != nil {
		return nil, err
	}
	defer p.unregister(call)

	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := p.conn.Write(ctx, websocket.MessageText, b); err != nil {
		return nil, err
	}

	if p.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RequestTimeout)
		defer cancel()
	}

	select {
	case resp, ok := <-call.ch:
		if !ok {
			return nil, ErrClosed
		}
		if resp.Success {
			return resp.Result, nil
		}
		msg := resp.ErrorMessage
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, &RPCError{Method: method, Message: msg}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the connection; pending calls settle with ErrClosed.
func (p *Provider) Close() error {
	p.cancel()
	return p.conn.Close(websocket.StatusNormalClosure, "closing")
}

// Closed reports whether the provider's read loop has exited.
func (p *Provider) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Provider) register(c *pendingCall) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if c.id != "" {
		p.pending[c.id] = c
	} else {
		p.byMethod[c.method] = append(p.byMethod[c.method], c)
	}
	return nil
}

func (p *Provider) unregister(c *pendingCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c.id != "" {
		delete(p.pending, c.id)
		return
	}
	q := p.byMethod[c.method]
	for i, pc := range q {
		if pc == c {
			p.byMethod[c.method] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}

// settle routes a response to its pending call: by echoed id, or in
// compatibility mode to the oldest pending call for the method. Responses
// with no matching call are dropped.
func (p *Provider) settle(resp bridge.Response) {
	p.mu.Lock()
	var call *pendingCall
	if resp.ID != "" {
		call = p.pending[resp.ID]
		delete(p.pending, resp.ID)
	} else if q := p.byMethod[resp.Method]; len(q) > 0 {
		call = q[0]
		p.byMethod[resp.Method] = q[1:]
	}
	p.mu.Unlock()
	if call != nil {
		call.ch <- resp
	}
}

func (p *Provider) readLoop(ctx context.Context) {
	defer func() {
		p.mu.Lock()
		p.closed = true
		for id, c := range p.pending {
			close(c.ch)
			delete(p.pending, id)
		}
		for m, q := range p.byMethod {
			for _, c := range q {
				close(c.ch)
			}
			delete(p.byMethod, m)
		}
		p.mu.Unlock()
		close(p.done)
		p.cancel()
		_ = p.conn.Close(websocket.StatusNormalClosure, "closing")
	}()
	for {
		_, data, err := p.conn.Read(ctx)
		if err != nil {
			return
		}
		// the channel may carry unrelated traffic; anything that does not
		// parse as a response frame is ignored
		var env struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &env) != nil || env.Type != bridge.TypeResponse {
			continue
		}
		var resp bridge.Response
		if json.Unmarshal(data, &resp) != nil {
			continue
		}
		p.settle(resp)
	}
}

func (p *Provider) autoConnect(ctx context.Context) {
	select {
	case <-time.After(p.opts.AutoConnectDelay):
	case <-ctx.Done():
		return
	}
	accounts, err := p.Request(ctx, "eth_requestAccounts", nil)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("auto connect failed")
		return
	}
	logx.Log.Info().RawJSON("accounts", accounts).Msg("auto connect complete")
}
