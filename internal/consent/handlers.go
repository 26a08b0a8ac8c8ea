package consent

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes exposes the queue over HTTP so a separate UI surface can drive
// consent: GET / lists outstanding prompts, POST /{id}/approve and
// POST /{id}/reject settle one.
func (q *Queue) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q.Pending())
	})
	r.Post("/{id}/approve", q.resolveHandler(Approved))
	r.Post("/{id}/reject", q.resolveHandler(Rejected))
	return r
}

func (q *Queue) resolveHandler(d Decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !q.Resolve(id, d) {
			http.Error(w, "unknown prompt", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "decision": d.String()})
	}
}
