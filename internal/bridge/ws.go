package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ethshell/ethshell/internal/logx"
	"github.com/ethshell/ethshell/internal/metrics"
)

// Endpoint handles incoming content session websocket connections. Each
// connection carries the JSON frames of one embedded page; requests are
// handled on their own goroutines so a pending consent decision never stalls
// the read loop, which means responses may leave out of request order.
func Endpoint(h *Handler, reg *Registry, expectedKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provided := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}
		if provided == "" {
			provided = r.URL.Query().Get("shell_key")
		}
		if expectedKey != "" && provided != expectedKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusInternalError, "server error")

		id := uuid.NewString()
		reg.add(id, r.RemoteAddr)
		metrics.SessionOpened()
		logx.Log.Info().Str("session_id", id).Str("remote_addr", r.RemoteAddr).Msg("session connected")
		defer func() {
			reg.remove(id)
			metrics.SessionClosed()
			logx.Log.Info().Str("session_id", id).Msg("session closed")
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		send := make(chan Response, 32)
		go func() {
			for {
				select {
				case resp := <-send:
					b, err := json.Marshal(resp)
					if err != nil {
						continue
					}
					if err := c.Write(ctx, websocket.MessageText, b); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				return
			}
			var env struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &env); err != nil || env.Type != TypeRequest {
				metrics.RecordDroppedFrame()
				logx.Log.Debug().Str("session_id", id).Msg("dropped malformed frame")
				continue
			}
			var req Request
			if err := json.Unmarshal(data, &req); err != nil {
				metrics.RecordDroppedFrame()
				logx.Log.Debug().Str("session_id", id).Msg("dropped malformed request")
				continue
			}
			logx.Log.Debug().Str("session_id", id).Str("method", req.Method).Str("request_id", req.ID).Msg("request")
			reg.incInFlight(id)
			go func(req Request) {
				defer reg.decInFlight(id)
				resp := h.Handle(ctx, req)
				select {
				case send <- resp:
				case <-ctx.Done():
				}
			}(req)
		}
	}
}
