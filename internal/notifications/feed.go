// Package notifications keeps a small per-host activity feed, fed from the
// Kafka event stream. The feed is in memory and bounded; it is a dashboard
// convenience, not an audit log.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ventar/internal/utils"
)

const maxPerHost = 50

type Notification struct {
	ID        string    `json:"id"`
	HostID    string    `json:"-"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// View is a Notification with the timestamp rendered relative to now.
type View struct {
	Notification
	When string `json:"when"`
}

type Feed struct {
	mu    sync.Mutex
	items map[string][]Notification // host id -> newest first
	now   func() time.Time
}

func NewFeed() *Feed {
	return &Feed{
		items: make(map[string][]Notification),
		now:   time.Now,
	}
}

// Add prepends a notification for the host, trimming the oldest past the cap.
func (f *Feed) Add(hostID, kind, message string) Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := Notification{
		ID:        uuid.New().String(),
		HostID:    hostID,
		Kind:      kind,
		Message:   message,
		CreatedAt: f.now(),
	}

	list := append([]Notification{n}, f.items[hostID]...)
	if len(list) > maxPerHost {
		list = list[:maxPerHost]
	}
	f.items[hostID] = list
	return n
}

// List returns the host's notifications, newest first.
func (f *Feed) List(hostID string) []View {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	list := f.items[hostID]
	views := make([]View, 0, len(list))
	for _, n := range list {
		views = append(views, View{Notification: n, When: utils.RelativeTime(n.CreatedAt, now)})
	}
	return views
}

// ToggleRead flips a notification's read flag. Returns false when the id is
// not in the host's feed.
func (f *Feed) ToggleRead(hostID, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.items[hostID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = !list[i].Read
			return true
		}
	}
	return false
}

func (f *Feed) UnreadCount(hostID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.items[hostID] {
		if !n.Read {
			count++
		}
	}
	return count
}

// SetClock overrides the feed's clock in tests.
func (f *Feed) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}
