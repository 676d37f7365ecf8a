package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractCatalog() *domain.Catalog {
	return domain.MustCatalog(
		domain.SKU{Name: "banana", Color: "yellow", Quantity: 4, UnitPrice: decimal.NewFromInt(50)},
		domain.SKU{Name: "apple", Color: "red", Quantity: 5, UnitPrice: decimal.NewFromInt(80)},
		domain.SKU{Name: "grape", Color: "purple", Quantity: 6, UnitPrice: decimal.NewFromInt(120)},
	)
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	catalog := contractCatalog()

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, catalog)
		banana, _ := s.Inventory.Get("banana")
		banana.Quantity = 2
		s.Inventory.Put(banana)
		s.Cart.Put(domain.SKU{Name: "grape", Color: "purple", Quantity: 1, UnitPrice: decimal.NewFromInt(120)})
		s.Cart.Put(domain.SKU{Name: "banana", Color: "yellow", Quantity: 2, UnitPrice: decimal.NewFromInt(50)})
		s.AppendHistory(0, domain.Message{Role: domain.RoleUser, Content: "add two bananas"})

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, []string{"banana", "apple", "grape"}, loaded.Inventory.Names())
		assert.Equal(t, []string{"grape", "banana"}, loaded.Cart.Names(), "cart order must survive persistence")

		item, ok := loaded.Inventory.Get("banana")
		require.True(t, ok)
		assert.Equal(t, 2, item.Quantity)

		entry, ok := loaded.Cart.Get("grape")
		require.True(t, ok)
		assert.True(t, entry.UnitPrice.Equal(decimal.NewFromInt(120)))
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "add two bananas", loaded.History[0].Content)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, catalog)))

		first, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		first.Cart.Put(domain.SKU{Name: "apple", Quantity: 1})

		second, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, second.Cart.Has("apple"), "mutating a loaded session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, catalog)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, catalog)))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, catalog)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
