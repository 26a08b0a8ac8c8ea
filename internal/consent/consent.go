// Package consent models the approval step in front of side-effecting wallet
// methods. A gate resolves every prompt to exactly one of two outcomes;
// abandonment of any kind (cancelled context, shutdown, dismissed UI) counts
// as a rejection so the bridge can always answer the request.
package consent

import (
	"context"
	"time"
)

// Decision is the outcome of a consent prompt.
type Decision int

const (
	Rejected Decision = iota
	Approved
)

func (d Decision) String() string {
	if d == Approved {
		return "approved"
	}
	return "rejected"
}

// Prompt carries the method-specific context shown to the user.
type Prompt struct {
	ID          string    `json:"id"`
	Method      string    `json:"method"`
	Title       string    `json:"title"`
	Detail      string    `json:"detail,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Gate resolves a prompt to a decision. Implementations must return exactly
// one decision per call and treat a cancelled context as Rejected.
type Gate interface {
	Decide(ctx context.Context, p Prompt) Decision
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, p Prompt) Decision

func (f GateFunc) Decide(ctx context.Context, p Prompt) Decision {
	return f(ctx, p)
}

// Policy is a gate with a fixed answer, for headless operation.
func Policy(approve bool) Gate {
	return GateFunc(func(context.Context, Prompt) Decision {
		if approve {
			return Approved
		}
		return Rejected
	})
}
