package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindwell/internal/userstore"
)

// Manager hands out one live Session per email so every request from the
// same user works against the same in-memory record. The per-user file
// therefore has a single active writer; cross-process access is
// last-writer-wins by design of the store.
type Manager struct {
	mu       sync.Mutex
	store    userstore.Store
	logger   *zap.SugaredLogger
	sessions map[string]*Session
}

func NewManager(store userstore.Store, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		store:    store,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for email, loading the user's record from
// the store on first access. A missing record loads as an empty skeleton,
// so first logins need no special casing.
func (m *Manager) Get(email string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[email]; ok {
		return s, nil
	}
	key := userstore.UserKey(email)
	rec, err := m.store.Load(key)
	if err != nil {
		return nil, fmt.Errorf("load user record: %w", err)
	}
	if rec.Email == "" {
		rec.Email = email
	}
	s := &Session{
		email:  email,
		key:    key,
		rec:    rec,
		store:  m.store,
		logger: m.logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	m.sessions[email] = s
	return s, nil
}

// Evict drops the in-memory session for email. The persisted record is
// untouched; the next Get reloads it.
func (m *Manager) Evict(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, email)
}
