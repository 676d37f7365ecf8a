package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/shopspring/decimal"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, s *domain.Session) error { return nil }
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	catalog := domain.MustCatalog(domain.SKU{Name: "banana", Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	mgr := NewManager(&MockStore{}, catalog)
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Transact(ctx, sid, func(*domain.Session) error { return nil })
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := mgr.activeLocks(); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
