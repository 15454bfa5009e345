package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Session tracks one authenticated wallet connection.
type Session struct {
	PublicKey     string
	Authenticated bool
	Token         string
	ConnectedAt   time.Time
	LastActivity  time.Time
}

// Expired reports whether the session passed its maximum age.
func (s *Session) Expired(maxAge time.Duration) bool {
	return time.Since(s.ConnectedAt) > maxAge
}

// Store keeps wallet sessions in memory, keyed by public key. Sessions
// expire after MaxAge and are evicted lazily on read.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// MaxAge is the session lifetime. Defaults to 24 hours.
	MaxAge time.Duration
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		MaxAge:   24 * time.Hour,
	}
}

// Put stores or replaces the session for a wallet.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.PublicKey] = sess
}

// Get returns the live session for a wallet, touching its activity time.
// Expired sessions are removed and reported as absent.
func (s *Store) Get(publicKey string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[publicKey]
	if !ok {
		return nil, false
	}
	if sess.Expired(s.MaxAge) {
		delete(s.sessions, publicKey)
		return nil, false
	}
	sess.LastActivity = time.Now()
	return sess, true
}

// Clear removes the session for a wallet.
func (s *Store) Clear(publicKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, publicKey)
}

// Len reports the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// WalletBridge exposes the currently connected wallet. Bridges that can push
// connection changes also implement WalletSubscriber.
type WalletBridge interface {
	ConnectedKey() string
}

// WalletSubscriber delivers wallet connection changes as they happen. The
// callback receives the new connected key, or "" on disconnect.
type WalletSubscriber interface {
	Subscribe(fn func(publicKey string)) (cancel func())
}

// Monitor watches the wallet bridge and clears sessions whose wallet is no
// longer the connected one. It subscribes for change events when the bridge
// supports it and only falls back to polling otherwise.
type Monitor struct {
	bridge WalletBridge
	store  *Store

	// PollInterval is used only for bridges without subscription support.
	PollInterval time.Duration
}

func NewMonitor(bridge WalletBridge, store *Store) *Monitor {
	return &Monitor{
		bridge:       bridge,
		store:        store,
		PollInterval: 10 * time.Second,
	}
}

// Run blocks until ctx is done, keeping the store consistent with the
// bridge's connected wallet.
func (m *Monitor) Run(ctx context.Context) {
	if sub, ok := m.bridge.(WalletSubscriber); ok {
		cancel := sub.Subscribe(m.onChange)
		defer cancel()
		log.Info("wallet monitor subscribed to bridge events")
		<-ctx.Done()
		return
	}

	log.WithField("interval", m.PollInterval).
		Info("wallet bridge has no event support, polling")
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.onChange(m.bridge.ConnectedKey())
		}
	}
}

// onChange drops every session that does not belong to the connected wallet.
func (m *Monitor) onChange(connected string) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for key := range m.store.sessions {
		if key != connected {
			delete(m.store.sessions, key)
		}
	}
}
