package server

import (
	_ "embed"
	"net/http"
)

//go:embed dapp.html
var dappHTML string

// DappPage serves the embedded demo page. The page carries a JavaScript
// provider shim speaking the same frames as internal/provider, so a browser
// pointed at the shell exercises the bridge end to end.
func DappPage() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dappHTML))
	}
}
