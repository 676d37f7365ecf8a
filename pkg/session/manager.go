package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// MaxIDLength is the longest accepted session ID.
const MaxIDLength = 128

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.SessionStore
	catalog *domain.Catalog

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	onCreate func(sessionID string)
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithOnCreate registers a callback invoked once for every session the
// Manager creates.
func WithOnCreate(fn func(sessionID string)) Option {
	return func(m *Manager) {
		m.onCreate = fn
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Session Manager that seeds new sessions from catalog.
func NewManager(store ports.SessionStore, catalog *domain.Catalog, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		catalog: catalog,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateID checks that a session ID is usable as a store key.
func ValidateID(sessionID string) error {
	if sessionID == "" || len(sessionID) > MaxIDLength {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSessionID, sessionID)
	}
	return nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// activeLocks reports how many lock entries are held. Used by tests.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Catalog returns the catalog new sessions are seeded from.
func (m *Manager) Catalog() *domain.Catalog {
	return m.catalog
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		return err
	})
	return s, err
}

// GetOrCreate returns a snapshot of the session, creating it from the
// catalog on first contact. Concurrent first contacts create it once.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.loadOrCreate(ctx, sessionID)
		return err
	})
	return s, err
}

// Transact runs fn against the session while holding its lock, then saves
// the result. The session is created first if needed. If fn returns an
// error nothing is saved. Once fn has run, the save is not cancelled by ctx.
func (m *Manager) Transact(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	var snapshot *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.loadOrCreate(ctx, sessionID)
		if err != nil {
			return err
		}

		if err := fn(s); err != nil {
			return err
		}

		s.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(context.WithoutCancel(ctx), s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		snapshot = s.Clone()
		return nil
	})
	return snapshot, err
}

// loadOrCreate must be called with the session lock held.
func (m *Manager) loadOrCreate(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	s = domain.NewSession(sessionID, m.catalog)

	// Persist immediately to reserve the ID
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Debug("Session created", "session_id", sessionID)
	if m.onCreate != nil {
		m.onCreate(sessionID)
	}
	return s, nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}

	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
