package auth

import "sync"

// Decision is the outcome of evaluating a page's role requirements against
// the current session snapshot.
type Decision int

const (
	// DecisionPending means the provider has not resolved the session yet:
	// render a loading state, do not redirect.
	DecisionPending Decision = iota
	// DecisionDeniedUnauthenticated means no signed-in user: redirect to
	// the public landing page.
	DecisionDeniedUnauthenticated
	// DecisionDeniedForbidden means a signed-in user without any of the
	// required roles: surface a permission error, then redirect.
	DecisionDeniedForbidden
	// DecisionAllowed renders the wrapped content.
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionDeniedUnauthenticated:
		return "denied_unauthenticated"
	case DecisionDeniedForbidden:
		return "denied_forbidden"
	case DecisionAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Evaluate applies the guard rules in order. An empty requiredRoles set
// means any authenticated user passes.
func Evaluate(snap Snapshot, requiredRoles []Role) Decision {
	if snap.Loading {
		return DecisionPending
	}
	if !snap.Authenticated {
		return DecisionDeniedUnauthenticated
	}
	if len(requiredRoles) > 0 {
		for _, required := range requiredRoles {
			if snap.HasRole(required) {
				return DecisionAllowed
			}
		}
		return DecisionDeniedForbidden
	}
	return DecisionAllowed
}

// Guard re-evaluates on every auth or requirement change and remembers the
// previous decision so that denial side effects (redirect, permission
// alert) fire exactly once per transition into a denied state, not on
// every re-render while already denied. Concurrent requests on the same
// session share one guard, so the transition bookkeeping is locked.
type Guard struct {
	mu     sync.Mutex
	last   Decision
	primed bool
}

func NewGuard() *Guard {
	return &Guard{}
}

// Observe evaluates the snapshot and reports whether this call transitioned
// into the returned decision. fired is true only when the decision differs
// from the previous observation (or on the first observation).
func (g *Guard) Observe(snap Snapshot, requiredRoles []Role) (decision Decision, fired bool) {
	decision = Evaluate(snap, requiredRoles)

	g.mu.Lock()
	defer g.mu.Unlock()
	fired = !g.primed || decision != g.last
	g.last = decision
	g.primed = true
	return decision, fired
}

// Last returns the most recently observed decision.
func (g *Guard) Last() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
