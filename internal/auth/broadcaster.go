package auth

import (
	"sync"

	"ventar/internal/models"
)

type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is a provider-pushed auth state change. Seq increases monotonically
// across all events so consumers can apply last-writer-wins: a slow initial
// session check must never overwrite a later sign-out.
type Event struct {
	Type    EventType
	Seq     uint64
	Session *models.Session
}

// Broadcaster fans auth events out to subscribers. Publishing never blocks:
// a subscriber that stopped draining its channel loses events rather than
// stalling sign-out for everyone else.
type Broadcaster struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscription is a disposable handle. Callers must Close it on teardown;
// a leaked subscription keeps receiving events after its owner is gone.
type Subscription struct {
	C  <-chan Event
	id int
	b  *Broadcaster
}

func (s *Subscription) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if ch, ok := s.b.subs[s.id]; ok {
		delete(s.b.subs, s.id)
		close(ch)
	}
}

func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	b.nextID++
	b.subs[b.nextID] = ch
	return &Subscription{C: ch, id: b.nextID, b: b}
}

// Publish assigns the next sequence number and delivers to every subscriber.
// The assigned sequence is returned so callers can stamp related state.
func (b *Broadcaster) Publish(eventType EventType, session *models.Session) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	event := Event{Type: eventType, Seq: b.seq, Session: session}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return b.seq
}

// Seq returns the sequence number of the most recent event.
func (b *Broadcaster) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
