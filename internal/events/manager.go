package events

import (
	"sync"

	"ventar/internal/auth"
	"ventar/internal/models"
)

// Manager hands out one collection store per signed-in host. Each store
// subscribes to auth state changes; evicting a host closes its store.
type Manager struct {
	deps Deps
	bc   *auth.Broadcaster

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(deps Deps, bc *auth.Broadcaster) *Manager {
	return &Manager{
		deps:   deps,
		bc:     bc,
		stores: make(map[string]*Store),
	}
}

// For returns the host's store, creating and session-binding it on first
// use. The attach carries the broadcaster's current sequence so a sign-out
// that already happened is not overwritten.
func (m *Manager) For(session *models.Session) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[session.HostID]
	if !ok {
		store = NewStore(m.deps, m.bc, session.HostID)
		m.stores[session.HostID] = store
	}
	store.AttachSession(session, m.bc.Seq())
	return store
}

// Evict closes and forgets the host's store.
func (m *Manager) Evict(hostID string) {
	m.mu.Lock()
	store, ok := m.stores[hostID]
	delete(m.stores, hostID)
	m.mu.Unlock()
	if ok {
		store.Close()
	}
}

// Close tears down every store.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*Store)
	m.mu.Unlock()
	for _, store := range stores {
		store.Close()
	}
}
