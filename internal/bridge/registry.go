package bridge

import (
	"sort"
	"sync"
	"time"
)

// SessionInfo is a point-in-time description of one content session, as
// reported by the status endpoint.
type SessionInfo struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
	InFlight    int       `json:"in_flight"`
}

type sessionRecord struct {
	info SessionInfo
}

// Registry tracks connected content sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewRegistry builds an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*sessionRecord)}
}

func (r *Registry) add(id, remoteAddr string) {
	r.mu.Lock()
	r.sessions[id] = &sessionRecord{info: SessionInfo{ID: id, RemoteAddr: remoteAddr, ConnectedAt: time.Now()}}
	r.mu.Unlock()
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) incInFlight(id string) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.info.InFlight++
	}
	r.mu.Unlock()
}

func (r *Registry) decInFlight(id string) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok && s.info.InFlight > 0 {
		s.info.InFlight--
	}
	r.mu.Unlock()
}

// Sessions returns the connected sessions, oldest first.
func (r *Registry) Sessions() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}
