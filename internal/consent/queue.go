package consent

import (
	"context"
	"sort"
	"sync"
)

// Queue is a gate that parks prompts until something external resolves them,
// typically the HTTP handlers in Routes. Closing the queue rejects whatever
// is still outstanding.
type Queue struct {
	mu      sync.Mutex
	pending map[string]chan Decision
	prompts map[string]Prompt
	closed  bool
}

// NewQueue builds an empty queue gate.
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[string]chan Decision),
		prompts: make(map[string]Prompt),
	}
}

// Decide parks the prompt until Resolve, Close or the context settles it.
func (q *Queue) Decide(ctx context.Context, p Prompt) Decision {
	ch := make(chan Decision, 1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return Rejected
	}
	q.pending[p.ID] = ch
	q.prompts[p.ID] = p
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.pending, p.ID)
		delete(q.prompts, p.ID)
		q.mu.Unlock()
	}()

	select {
	case d := <-ch:
		return d
	case <-ctx.Done():
		return Rejected
	}
}

// Pending lists outstanding prompts, oldest first.
func (q *Queue) Pending() []Prompt {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Prompt, 0, len(q.prompts))
	for _, p := range q.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out
}

// Resolve settles the prompt with the given id. It reports whether a prompt
// with that id was outstanding.
func (q *Queue) Resolve(id string, d Decision) bool {
	q.mu.Lock()
	ch, ok := q.pending[id]
	if ok {
		delete(q.pending, id)
		delete(q.prompts, id)
	}
	q.mu.Unlock()
	if !ok {
		return false
	}
	ch <- d
	return true
}

// Close rejects all outstanding prompts and refuses new ones.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	chans := make([]chan Decision, 0, len(q.pending))
	for _, ch := range q.pending {
		chans = append(chans, ch)
	}
	q.pending = make(map[string]chan Decision)
	q.prompts = make(map[string]Prompt)
	q.mu.Unlock()
	for _, ch := range chans {
		ch <- Rejected
	}
}
