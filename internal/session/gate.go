package session

import (
	"strings"
	"sync"

	"parley/internal/cache"
	"parley/internal/types"
)

type State int

const (
	StateInit State = iota
	StateUnauthenticated
	StateCheckingProfile
	StateNeedsSetup
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateCheckingProfile:
		return "checking_profile"
	case StateNeedsSetup:
		return "needs_setup"
	case StateReady:
		return "ready"
	default:
		return "init"
	}
}

// Gate sequences the app through identity resolution and the profile check.
// Ready and Unauthenticated are the stable states of a session; everything
// else is on the way to one of them.
type Gate struct {
	mu        sync.Mutex
	state     State
	principal string
}

func NewGate() *Gate {
	return &Gate{state: StateInit}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Principal() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.principal
}

// ResolveIdentity feeds the outcome of identity resolution. An empty
// principal lands in Unauthenticated; otherwise the profile check starts.
func (g *Gate) ResolveIdentity(principal string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	principal = strings.TrimSpace(principal)
	if principal == "" {
		g.state = StateUnauthenticated
		g.principal = ""
		return g.state
	}
	g.principal = principal
	if g.state == StateInit || g.state == StateUnauthenticated {
		g.state = StateCheckingProfile
	}
	return g.state
}

// ObserveProfile advances the gate on each profile-key change. Only a
// completed fetch moves the state: a pending or failed fetch keeps the gate
// in CheckingProfile so the setup screen never flashes, and a fetch error is
// never conflated with "no profile".
func (g *Gate) ObserveProfile(profile *types.UserProfile, entry cache.Entry) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateCheckingProfile:
		if entry.Status != cache.StatusReady {
			return g.state
		}
		if profile == nil {
			g.state = StateNeedsSetup
		} else {
			g.state = StateReady
		}
	case StateNeedsSetup:
		if entry.Status == cache.StatusReady && profile != nil {
			g.state = StateReady
		}
	case StateReady:
		// A session stays Ready until identity changes; a transient profile
		// refetch failure does not demote it.
	}
	return g.state
}

// SignOut drops the session from any state.
func (g *Gate) SignOut() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.principal = ""
	return g.state
}
