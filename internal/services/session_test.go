package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Blue Mug", Category: "kitchen", Color: "blue", Description: "A ceramic mug in deep blue", Price: 12.50, Stock: 10},
		{ID: "p2", Name: "Red Mug", Category: "kitchen", Color: "red", Description: "A ceramic mug in bright red", Price: 11.00, Stock: 4},
		{ID: "p3", Name: "Notebook", Category: "office", Color: "blue", Description: "A hardcover notebook", Price: 5.25, Stock: 50},
	}
}

type testEnv struct {
	catalog  *storage.Catalog
	orders   *storage.FileOrderLog
	sessions *SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalog, err := storage.NewCatalog(testProducts())
	require.NoError(t, err)

	orders, err := storage.OpenOrderLog(filepath.Join(t.TempDir(), "orders.jsonl"), catalog)
	require.NoError(t, err)
	t.Cleanup(func() { orders.Close() })

	sessions := NewSessionManager(catalog, orders, 30*time.Minute)
	t.Cleanup(sessions.Close)

	return &testEnv{catalog: catalog, orders: orders, sessions: sessions}
}

func TestGetDoesNotCreate(t *testing.T) {
	env := newTestEnv(t)

	_, ok := env.sessions.Get("conv-1")
	assert.False(t, ok)
	assert.Equal(t, 0, env.sessions.ActiveSessions())

	created := env.sessions.GetOrCreate("conv-1")
	found, ok := env.sessions.Get("conv-1")
	assert.True(t, ok)
	assert.Same(t, created, found)
}

func TestGetOrCreate(t *testing.T) {
	env := newTestEnv(t)

	first := env.sessions.GetOrCreate("conv-1")
	second := env.sessions.GetOrCreate("conv-1")
	assert.Same(t, first, second)
	assert.Equal(t, 1, env.sessions.ActiveSessions())

	minted := env.sessions.GetOrCreate("")
	assert.NotEmpty(t, minted.SessionID)
	assert.NotEqual(t, "conv-1", minted.SessionID)
	assert.Equal(t, 2, env.sessions.ActiveSessions())
}

func TestAddToCartMergesQuantities(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	snapshot, err := env.sessions.AddToCart(session, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 25.00, snapshot.RunningTotal)

	snapshot, err = env.sessions.AddToCart(session, "p1", 3)
	require.NoError(t, err)
	require.Len(t, snapshot.LineItems, 1)
	assert.Equal(t, 5, snapshot.LineItems[0].Quantity)
	assert.Equal(t, "Blue Mug", snapshot.LineItems[0].Name)
	assert.Equal(t, 62.50, snapshot.RunningTotal)

	snapshot, err = env.sessions.AddToCart(session, "p3", 1)
	require.NoError(t, err)
	require.Len(t, snapshot.LineItems, 2)
	assert.Equal(t, 67.75, snapshot.RunningTotal)
}

func TestAddToCartValidation(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.AddToCart(session, "ghost", 1)
	assert.Equal(t, models.CodeProductNotFound, models.CodeOf(err))
	assert.Empty(t, session.Cart)

	_, err = env.sessions.AddToCart(session, "p1", 0)
	assert.Equal(t, models.CodeInvalidQuantity, models.CodeOf(err))
	assert.Empty(t, session.Cart)

	// an unknown product wins over a bad quantity
	_, err = env.sessions.AddToCart(session, "ghost", 0)
	assert.Equal(t, models.CodeProductNotFound, models.CodeOf(err))
	assert.Empty(t, session.Cart)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.AddToCart(session, "p1", 1)
	require.NoError(t, err)

	snapshot := env.sessions.ClearCart(session)
	assert.Empty(t, snapshot.LineItems)
	assert.Empty(t, session.Cart)
}

func TestCheckoutSuccess(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.AddToCart(session, "p1", 2)
	require.NoError(t, err)

	order, err := env.sessions.Checkout(session)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.OrderID)
	assert.Equal(t, 25.00, order.Total)

	// success clears the cart and records the pointer
	assert.Empty(t, session.Cart)
	assert.Equal(t, order.OrderID, session.LastOrderID)

	got, err := env.orders.Get(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.Checkout(session)
	assert.Equal(t, models.CodeEmptyOrder, models.CodeOf(err))
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.AddToCart(session, "p1", 1)
	require.NoError(t, err)

	// A product id the catalog no longer knows; placement must fail and
	// the cart must stay amendable.
	session.Cart = append(session.Cart, models.OrderLineItem{ProductID: "ghost", Quantity: 1})

	_, err = env.sessions.Checkout(session)
	assert.Equal(t, models.CodeProductNotFound, models.CodeOf(err))
	assert.Len(t, session.Cart, 2)
	assert.Zero(t, session.LastOrderID)
	assert.Equal(t, 0, env.orders.Count())
}

func TestCheckoutWriteFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	session := env.sessions.GetOrCreate("conv-1")

	_, err := env.sessions.AddToCart(session, "p1", 2)
	require.NoError(t, err)

	// break the durable write path; the cart must stay amendable
	require.NoError(t, env.orders.Close())

	_, err = env.sessions.Checkout(session)
	assert.Equal(t, models.CodeStoreWriteFailure, models.CodeOf(err))
	assert.Len(t, session.Cart, 1)
	assert.Zero(t, session.LastOrderID)
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	env.sessions.GetOrCreate("conv-1")

	assert.True(t, env.sessions.End("conv-1"))
	assert.False(t, env.sessions.End("conv-1"))
	assert.Equal(t, 0, env.sessions.ActiveSessions())
}

func TestRemoveExpired(t *testing.T) {
	env := newTestEnv(t)

	stale := env.sessions.GetOrCreate("stale")
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	env.sessions.GetOrCreate("fresh")

	env.sessions.removeExpired(time.Now())

	assert.Equal(t, 1, env.sessions.ActiveSessions())
	assert.False(t, env.sessions.End("stale"))
	assert.True(t, env.sessions.End("fresh"))
}
