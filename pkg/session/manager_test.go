package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/aretw0/shopkeep/pkg/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sess.ID] = sess.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[sessionID]; ok {
		return sess.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func testCatalog() *domain.Catalog {
	return domain.MustCatalog(
		domain.SKU{Name: "banana", Color: "yellow", Quantity: 40, UnitPrice: decimal.NewFromInt(50)},
		domain.SKU{Name: "apple", Color: "red", Quantity: 5, UnitPrice: decimal.NewFromInt(80)},
	)
}

func TestManager_TransactSerializesTurns(t *testing.T) {
	catalog := testCatalog()
	manager := session.NewManager(&SlowStore{}, catalog)
	eng := engine.New(catalog)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	turns := 20
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Transact(ctx, id, func(s *domain.Session) error {
				res := eng.Apply(s, []domain.Intent{domain.AddItem{Name: "banana", Quantity: 1}})
				return res.Outcomes[0].Err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	entry, _ := s.Cart.Get("banana")
	assert.Equal(t, turns, entry.Quantity, "no turn may be lost")
	assert.NoError(t, engine.Verify(catalog, s))
}

func TestManager_DifferentSessionsAreIndependent(t *testing.T) {
	catalog := testCatalog()
	manager := session.NewManager(&SlowStore{}, catalog)
	eng := engine.New(catalog)
	ctx := context.Background()

	_, err := manager.Transact(ctx, "alice", func(s *domain.Session) error {
		eng.Apply(s, []domain.Intent{domain.AddItem{Name: "apple", Quantity: 5}})
		return nil
	})
	require.NoError(t, err)

	bob, err := manager.GetOrCreate(ctx, "bob")
	require.NoError(t, err)
	item, _ := bob.Inventory.Get("apple")
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 0, bob.Cart.Len())
}

func TestManager_GetOrCreate(t *testing.T) {
	var created atomic.Int32
	manager := session.NewManager(&SlowStore{}, testCatalog(),
		session.WithOnCreate(func(string) { created.Add(1) }),
	)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := manager.GetOrCreate(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load(), "session must be created exactly once")

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "apple"}, s.Inventory.Names())
	assert.Equal(t, 0, s.Cart.Len())

	// Snapshots are detached from the managed session.
	s.Cart.Put(domain.SKU{Name: "banana", Quantity: 1})
	again, err := manager.GetOrCreate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Cart.Len())
}

func TestManager_TransactErrorSkipsSave(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, testCatalog())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := manager.Transact(ctx, "s1", func(s *domain.Session) error {
		s.Cart.Put(domain.SKU{Name: "banana", Quantity: 1})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cart.Len())
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, testCatalog())
	ctx := context.Background()

	_, err := manager.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	_, err = manager.GetOrCreate(ctx, "b")
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	_, err = manager.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_InvalidID(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, testCatalog())
	ctx := context.Background()

	_, err := manager.GetOrCreate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)

	_, err = manager.GetOrCreate(ctx, strings.Repeat("x", session.MaxIDLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
}

func TestManager_CancelledContext(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, testCatalog())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := manager.Transact(ctx, "s1", func(*domain.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

type fakeLocker struct {
	mu      sync.Mutex
	locks   int
	unlocks int
	ttl     time.Duration
	lockErr error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.locks++
	f.ttl = ttl
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	manager := session.NewManager(&SlowStore{}, testCatalog(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	_, err := manager.Transact(ctx, "s1", func(*domain.Session) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.ttl)

	t.Run("Lock Failure", func(t *testing.T) {
		locker.lockErr = errors.New("redis down")
		_, err := manager.Transact(ctx, "s1", func(*domain.Session) error {
			t.Fatal("fn must not run without the lock")
			return nil
		})
		assert.ErrorContains(t, err, "failed to acquire distributed lock")
	})
}
