// Package bridge implements the host side of the wallet provider protocol:
// wire types, method dispatch and the WebSocket endpoint content sessions
// connect to.
package bridge

import "encoding/json"

// Frame type tags, shared with the injected provider.
const (
	TypeRequest  = "ETH_REQUEST"
	TypeResponse = "ETH_RESPONSE"
)

// Request is an inbound wallet call from the content side. ID is a
// per-request correlation identifier; it is empty when the peer runs in
// method-correlation compatibility mode, in which case frames match the
// legacy wire format byte for byte.
type Request struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers exactly one Request, echoing its ID and Method. Success
// and the payload fields are mutually exclusive: Result is set iff Success,
// ErrorMessage iff not. Build responses through success/failure to keep
// that invariant.
type Response struct {
	Type         string          `json:"type"`
	ID           string          `json:"id,omitempty"`
	Method       string          `json:"method"`
	Success      bool            `json:"success"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

func success(req Request, result any) Response {
	b, err := json.Marshal(result)
	if err != nil {
		return failure(req, "unencodable result")
	}
	return Response{Type: TypeResponse, ID: req.ID, Method: req.Method, Success: true, Result: b}
}

func failure(req Request, msg string) Response {
	return Response{Type: TypeResponse, ID: req.ID, Method: req.Method, Success: false, ErrorMessage: msg}
}
