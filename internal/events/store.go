package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"ventar/internal/auth"
	"ventar/internal/models"
)

// State is the collection store lifecycle: idle until the first fetch,
// loading while one is outstanding, then ready or error. Refresh re-enters
// loading.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ShareAckWindow is how long the "copied" acknowledgment stays visible.
const ShareAckWindow = 2 * time.Second

// Fetcher is the slice of Service the store needs to load the collection.
type Fetcher interface {
	FetchEvents(ctx context.Context, hostID string) ([]View, string, error)
}

// Deleter runs the two-phase delete.
type Deleter interface {
	DeleteEvent(ctx context.Context, id, hostID string, cascade bool) error
}

// Store owns the host-scoped, display-ready event collection and keeps it
// consistent with a remote data store that can fail, return partial data, or
// change underneath it. One store serves one signed-in host; the collection
// is a last-fetch-wins cache.
//
// Concurrency rules it enforces:
//   - a refresh already in flight coalesces (suppresses) a concurrent one,
//     so two fetches never interleave writes to the collection;
//   - results belonging to a superseded generation (an intervening Close or
//     sign-out) are discarded, never applied;
//   - auth events carry sequence numbers and apply last-writer-wins, so a
//     slow initial session check cannot overwrite a newer sign-out;
//   - the store is bound to one host id for its lifetime and ignores auth
//     events for any other host, so one host's sign-in or sign-out never
//     touches another host's collection.
type Store struct {
	fetcher Deps
	hostID  string
	now     func() time.Time

	mu         sync.Mutex
	session    *models.Session
	sessionSeq uint64
	state      State
	collection []View
	warning    string
	lastErr    string
	search     string
	filters    Filters
	gen        uint64
	inFlight   bool
	closed     bool
	deleting   map[string]bool
	sharedID   string
	sharedAt   time.Time

	sub *auth.Subscription
}

// Deps groups the service capabilities the store consumes.
type Deps struct {
	Fetcher Fetcher
	Deleter Deleter
}

// NewStore builds a store bound to hostID and, when a broadcaster is given,
// subscribes to auth state changes for its lifetime. Close releases the
// subscription.
func NewStore(deps Deps, bc *auth.Broadcaster, hostID string) *Store {
	s := &Store{
		fetcher:  deps,
		hostID:   hostID,
		now:      time.Now,
		state:    StateIdle,
		deleting: make(map[string]bool),
	}
	if bc != nil {
		s.sub = bc.Subscribe()
		go s.watchAuth()
	}
	return s
}

// watchAuth applies broadcast auth events addressed to this store's host.
// Events for other hosts, and sign-outs with no host attached (a garbage
// token), are ignored.
func (s *Store) watchAuth() {
	for event := range s.sub.C {
		if event.Session == nil || event.Session.HostID != s.hostID {
			continue
		}
		switch event.Type {
		case auth.SignedOut:
			s.applySignOut(event.Seq)
		case auth.SignedIn:
			s.AttachSession(event.Session, event.Seq)
		}
	}
}

// AttachSession installs the session the guard resolved. A stale attach (an
// initial check racing a newer sign-out) and a session belonging to a
// different host are both ignored.
func (s *Store) AttachSession(session *models.Session, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq < s.sessionSeq {
		return
	}
	if session != nil && session.HostID != s.hostID {
		return
	}
	s.session = session
	s.sessionSeq = seq
}

// applySignOut clears cached auth artifacts and the collection, regardless
// of in-flight requests: bumping the generation orphans them.
func (s *Store) applySignOut(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.sessionSeq {
		return
	}
	s.session = nil
	s.sessionSeq = seq
	s.collection = nil
	s.warning = ""
	s.state = StateIdle
	s.gen++
	s.inFlight = false
}

// Refresh discards the current collection and re-runs the fetch contract.
// A refresh already in flight suppresses this one (coalesced, not queued).
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	s.state = StateLoading
	s.gen++
	gen := s.gen
	hostID := s.session.HostID
	s.mu.Unlock()

	views, warning, err := s.fetcher.Fetcher.FetchEvents(ctx, hostID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The fetch resolved after a teardown or sign-out: discard, never apply.
	if s.closed || gen != s.gen {
		return nil
	}
	s.inFlight = false

	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			// The session guard owns this one: clear the session so nothing
			// host-scoped renders again before a fresh sign-in.
			s.session = nil
			s.state = StateIdle
			s.collection = nil
			return ErrUnauthorized
		}
		s.state = StateError
		s.lastErr = err.Error()
		return err
	}

	s.collection = views
	s.warning = warning
	s.lastErr = ""
	s.state = StateReady
	return nil
}

// Invalidate drops the collection back to idle so the next view performs a
// fresh fetch. Used after create, which deliberately does not insert
// locally.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = StateIdle
	s.gen++
	s.inFlight = false
}

// Delete runs the two-phase delete and, on success, removes the event from
// the local collection by identifier; no re-fetch is required because the
// delete is idempotent and scoped. A repeat submission for the same event
// while one is in flight is rejected.
func (s *Store) Delete(ctx context.Context, eventID string, cascade bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	if s.deleting[eventID] {
		s.mu.Unlock()
		return ErrDeleteInFlight
	}
	s.deleting[eventID] = true
	hostID := s.session.HostID
	s.mu.Unlock()

	err := s.fetcher.Deleter.DeleteEvent(ctx, eventID, hostID, cascade)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, eventID)
	if err != nil {
		return err
	}
	if s.closed {
		return nil
	}

	kept := s.collection[:0]
	for _, v := range s.collection {
		if v.ID != eventID {
			kept = append(kept, v)
		}
	}
	s.collection = kept
	return nil
}

// SetSearch updates the free-text criterion. Pure re-derivation: no fetch.
func (s *Store) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
}

// SetFilters updates the structured criteria. Pure re-derivation: no fetch.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// MarkShared records a copy-to-clipboard acknowledgment for the event.
func (s *Store) MarkShared(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sharedID = eventID
	s.sharedAt = s.now()
}

// SharedAck returns the event id whose share link was copied within the ack
// window, or "" once it lapsed.
func (s *Store) SharedAck() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sharedID != "" && s.now().Sub(s.sharedAt) < ShareAckWindow {
		return s.sharedID
	}
	return ""
}

// Snapshot is what the dashboard renders. Host-scoped data is only exposed
// once a session is attached; before that the events slice is always nil.
type Snapshot struct {
	State    State  `json:"-"`
	StateStr string `json:"state"`
	Events   []View `json:"events"`
	Total    int    `json:"total"`
	Warning  string `json:"warning,omitempty"`
	Error    string `json:"error,omitempty"`
	ShareAck string `json:"share_ack,omitempty"`
}

// Snapshot re-derives the filtered subset from the last fetched collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{State: s.state, StateStr: s.state.String()}
	if s.session == nil {
		return snap
	}

	snap.Events = Apply(s.collection, s.search, s.filters, s.now())
	snap.Total = len(s.collection)
	snap.Warning = s.warning
	snap.Error = s.lastErr
	if s.sharedID != "" && s.now().Sub(s.sharedAt) < ShareAckWindow {
		snap.ShareAck = s.sharedID
	}
	return snap
}

// State returns the current lifecycle state.
func (s *Store) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the store down: the auth subscription is released and any
// fetch still in flight resolves into the void.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.mu.Unlock()
	if s.sub != nil {
		s.sub.Close()
	}
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
