package bridge

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ethshell/ethshell/internal/consent"
)

func newBridgeServer(t *testing.T, gate consent.Gate, key string) (string, *Registry) {
	t.Helper()
	reg := NewRegistry()
	h := NewHandler(testState(t), gate)
	srv := httptest.NewServer(Endpoint(h, reg, key))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), reg
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(websocket.StatusNormalClosure, "done") })
	return c
}

func send(t *testing.T, c *websocket.Conn, frame string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readResponse(t *testing.T, c *websocket.Conn) Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return resp
}

func TestEndpointRoundTrip(t *testing.T) {
	url, _ := newBridgeServer(t, consent.Policy(true), "")
	c := dial(t, url)

	send(t, c, `{"type":"ETH_REQUEST","id":"r1","method":"eth_chainId"}`)
	resp := readResponse(t, c)
	if resp.Type != TypeResponse || resp.Method != "eth_chainId" || resp.ID != "r1" {
		t.Fatalf("envelope: %+v", resp)
	}
	if !resp.Success || string(resp.Result) != `"0x1"` {
		t.Fatalf("result: %+v", resp)
	}
}

func TestEndpointMalformedFramesDropped(t *testing.T) {
	url, _ := newBridgeServer(t, consent.Policy(true), "")
	c := dial(t, url)

	send(t, c, `not json at all`)
	send(t, c, `{"method":"eth_chainId"}`)
	send(t, c, `{"type":"SOMETHING_ELSE","method":"eth_chainId"}`)
	send(t, c, `{"type":"ETH_REQUEST","id":"ok","method":"net_version"}`)

	// the only response is for the well-formed request
	resp := readResponse(t, c)
	if resp.ID != "ok" || resp.Method != "net_version" || string(resp.Result) != `"1"` {
		t.Fatalf("response: %+v", resp)
	}
}

func TestEndpointAuth(t *testing.T) {
	url, _ := newBridgeServer(t, consent.Policy(true), "sekret")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := websocket.Dial(ctx, url, nil); err == nil {
		t.Fatal("dial without key should fail")
	}

	c := dial(t, url+"?shell_key=sekret")
	send(t, c, `{"type":"ETH_REQUEST","method":"eth_accounts"}`)
	if resp := readResponse(t, c); !resp.Success {
		t.Fatalf("response: %+v", resp)
	}
}

func TestEndpointConsentDoesNotBlockOtherRequests(t *testing.T) {
	release := make(chan consent.Decision)
	gate := consent.GateFunc(func(ctx context.Context, p consent.Prompt) consent.Decision {
		return <-release
	})
	url, _ := newBridgeServer(t, gate, "")
	c := dial(t, url)

	send(t, c, `{"type":"ETH_REQUEST","id":"gated","method":"eth_sendTransaction"}`)
	send(t, c, `{"type":"ETH_REQUEST","id":"quick","method":"eth_chainId"}`)

	// the ungated request answers while the gated one is still pending
	resp := readResponse(t, c)
	if resp.ID != "quick" {
		t.Fatalf("expected the ungated response first, got %+v", resp)
	}

	release <- consent.Approved
	resp = readResponse(t, c)
	if resp.ID != "gated" || !resp.Success {
		t.Fatalf("gated response: %+v", resp)
	}
}

func TestEndpointRegistryTracksSessions(t *testing.T) {
	url, reg := newBridgeServer(t, consent.Policy(true), "")
	c := dial(t, url)

	waitFor(t, func() bool { return len(reg.Sessions()) == 1 })
	info := reg.Sessions()[0]
	if info.ID == "" || info.RemoteAddr == "" {
		t.Fatalf("session info: %+v", info)
	}

	_ = c.Close(websocket.StatusNormalClosure, "bye")
	waitFor(t, func() bool { return len(reg.Sessions()) == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
