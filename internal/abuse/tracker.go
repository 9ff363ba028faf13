// Package abuse tracks per-client request cadence and invalid attempts and
// decides when a client is blocked. Blocks last for the process lifetime.
package abuse

import (
	"sort"
	"sync"
	"time"

	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	models "github.com/CodeAndHammer/ctfconsole/internal/models"
	"github.com/samber/lo"
)

type Decision int

const (
	Allowed Decision = iota
	DeniedAlreadyBlocked
	DeniedRateLimited
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeniedAlreadyBlocked:
		return "already_blocked"
	case DeniedRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

type BlockReason string

const (
	ReasonRateLimited     BlockReason = "rate_limited"
	ReasonInvalidInput    BlockReason = "invalid_input"
	ReasonInvalidCommands BlockReason = "invalid_commands"
)

type Stats struct {
	TrackedClients int
	BlockedClients int
}

type Tracker struct {
	mu           sync.Mutex
	clients      map[string]*models.ClientState
	blocked      map[string]BlockReason
	maxRequests  int
	window       time.Duration
	invalidLimit int
}

type Option func(*Tracker)

func WithMaxRequests(n int) Option {
	return func(t *Tracker) { t.maxRequests = n }
}

func WithWindow(d time.Duration) Option {
	return func(t *Tracker) { t.window = d }
}

func WithInvalidLimit(n int) Option {
	return func(t *Tracker) { t.invalidLimit = n }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		clients:      make(map[string]*models.ClientState),
		blocked:      make(map[string]BlockReason),
		maxRequests:  constants.MaxRequestsPerWindow,
		window:       constants.RequestWindow,
		invalidLimit: constants.InvalidLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) stateLocked(clientID string) *models.ClientState {
	st, ok := t.clients[clientID]
	if !ok {
		st = &models.ClientState{}
		t.clients[clientID] = st
	}
	return st
}

// CheckAndRecordRequest counts a request against the client's window. The
// window restarts on the first request after it expires; the invalid count
// is carried over untouched.
func (t *Tracker) CheckAndRecordRequest(clientID string, now time.Time) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.blocked[clientID]; ok {
		return DeniedAlreadyBlocked
	}

	st := t.stateLocked(clientID)
	if st.WindowStart.IsZero() || now.Sub(st.WindowStart) > t.window {
		st.WindowStart = now
		st.RequestCount = 1
	} else {
		st.RequestCount++
	}

	if st.RequestCount > t.maxRequests {
		t.blocked[clientID] = ReasonRateLimited
		return DeniedRateLimited
	}
	return Allowed
}

// RecordInvalid bumps the client's invalid count and reports whether this
// attempt pushed it into the blocked set.
func (t *Tracker) RecordInvalid(clientID string, reason BlockReason) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.blocked[clientID]; ok {
		return false
	}
	st := t.stateLocked(clientID)
	st.InvalidCount++
	if st.InvalidCount >= t.invalidLimit {
		t.blocked[clientID] = reason
		return true
	}
	return false
}

func (t *Tracker) IsBlocked(clientID string) (BlockReason, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	reason, ok := t.blocked[clientID]
	return reason, ok
}

// State returns a copy of the client's counters.
func (t *Tracker) State(clientID string) (models.ClientState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.clients[clientID]
	if !ok {
		return models.ClientState{}, false
	}
	return *st, true
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{TrackedClients: len(t.clients), BlockedClients: len(t.blocked)}
}

// Sweep drops state for clients that are not blocked, have no invalid
// attempts on record and whose window ended more than ttl ago. If the map is
// still above maxClients the oldest windows go first, invalid count or not.
// Blocked clients keep their state. Returns the number of evicted clients.
func (t *Tracker) Sweep(now time.Time, ttl time.Duration, maxClients int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-(t.window + ttl))
	removed := 0
	for id, st := range t.clients {
		if _, blocked := t.blocked[id]; blocked {
			continue
		}
		if st.InvalidCount == 0 && st.WindowStart.Before(cutoff) {
			delete(t.clients, id)
			removed++
		}
	}

	if maxClients <= 0 || len(t.clients) <= maxClients {
		return removed
	}

	type clientAge struct {
		id    string
		start time.Time
	}
	candidates := lo.FilterMap(lo.Keys(t.clients), func(id string, _ int) (clientAge, bool) {
		if _, blocked := t.blocked[id]; blocked {
			return clientAge{}, false
		}
		return clientAge{id: id, start: t.clients[id].WindowStart}, true
	})
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].start.Before(candidates[j].start)
	})
	excess := len(t.clients) - maxClients
	for _, c := range candidates[:min(excess, len(candidates))] {
		delete(t.clients, c.id)
		removed++
	}
	return removed
}
