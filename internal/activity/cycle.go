package activity

import (
	"sync"

	"github.com/rs/zerolog"
)

// State is a step of a refresh cycle.
type State int

const (
	StateCheckingCache State = iota
	StateFetching
	StateMerging
	StateDegraded
	StatePersisting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCheckingCache:
		return "checking_cache"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateDegraded:
		return "degraded"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Cycle is one refresh. Result and Err are set once Run returns; the cache
// is only written by Commit, so a superseded cycle can simply be dropped.
type Cycle struct {
	Result *Result
	Err    error

	agg     *Aggregator
	account string
	id      string
	log     zerolog.Logger

	mu      sync.Mutex
	states  []State
	pending []func()
	done    bool
}

// States returns the states the cycle has passed through.
func (c *Cycle) States() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]State(nil), c.states...)
}

// Commit writes the successfully fetched categories to the cache and
// finishes the cycle. It is safe to call more than once.
func (c *Cycle) Commit() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(pending) > 0 {
		c.enter(StatePersisting)
		for _, write := range pending {
			write()
		}
	}
	c.enter(StateDone)
}

func (c *Cycle) enter(s State) {
	c.mu.Lock()
	c.states = append(c.states, s)
	c.mu.Unlock()

	c.log.Debug().Stringer("state", s).Msg("refresh state")
}
