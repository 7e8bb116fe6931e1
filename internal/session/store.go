package session

import (
	"context"
	"sync"
	"time"

	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/google/uuid"
)

// Session is one editing session: the draft, the catalog snapshot it is
// being validated against, and a warning kalau ada baris yang sempat
// dibuang waktu hydrate. Satu session satu penulis; semua mutasi lewat
// Update supaya tetap serial.
type Session struct {
	ID string

	mu        sync.Mutex
	Draft     *order.DraftOrder
	Catalog   catalog.Catalog
	Warning   string
	lastTouch time.Time
}

// Update runs fn while holding the session lock.
func (s *Session) Update(fn func(s *Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouch = time.Now()
	return fn(s)
}

// Store holds all live drafts in memory. Draft tidak durable: tutup
// sesi berarti state yang belum disubmit hilang, itu memang kontraknya.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl}
}

func (st *Store) Create(d *order.DraftOrder, cat catalog.Catalog, warning string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Draft:     d,
		Catalog:   cat,
		Warning:   warning,
		lastTouch: time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// StartSweeper evicts abandoned sessions in the background.
func (st *Store) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st.sweep()
			}
		}
	}()
}

func (st *Store) sweep() {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.mu.Lock()
		stale := s.lastTouch.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(st.sessions, id)
		}
	}
}
