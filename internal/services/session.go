package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// Session tracks one conversation's in-progress cart and a pointer to the
// most recent order it placed. A session is owned by exactly one
// conversation and is deliberately not persisted: only committed orders
// survive a restart.
type Session struct {
	SessionID   string                 `json:"session_id"`
	Cart        []models.OrderLineItem `json:"cart"`
	LastOrderID int64                  `json:"last_order_id,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	LastActive  time.Time              `json:"last_active"`
	ExpiresAt   time.Time              `json:"expires_at"`
}

// SessionManager owns all live conversation sessions and the cart
// operations on them. Dispatch calls within one session are sequential, so
// the manager only guards its own session map; individual carts need no
// locking.
type SessionManager struct {
	catalog storage.ProductFinder
	orders  storage.OrderLog

	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a session manager and starts its expiry loop.
func NewSessionManager(catalog storage.ProductFinder, orders storage.OrderLog, ttl time.Duration) *SessionManager {
	sm := &SessionManager{
		catalog:  catalog,
		orders:   orders,
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}

	go sm.cleanupExpiredSessions()

	return sm
}

// GetOrCreate returns the session for a conversation id, creating it on
// first use and refreshing its expiry. An empty id gets a freshly minted
// one.
func (sm *SessionManager) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	if session, exists := sm.sessions[id]; exists {
		session.LastActive = now
		session.ExpiresAt = now.Add(sm.ttl)
		return session
	}

	session := &Session{
		SessionID:  id,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(sm.ttl),
	}
	sm.sessions[id] = session
	log.Printf("Session created: %s", id)
	return session
}

// Get returns the live session for id, if any. Unlike GetOrCreate it never
// creates a session and does not refresh expiry.
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[id]
	return session, exists
}

// End discards a conversation's session. Orders the session already
// committed are unaffected.
func (sm *SessionManager) End(id string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; !exists {
		return false
	}
	delete(sm.sessions, id)
	log.Printf("Session ended: %s", id)
	return true
}

// ActiveSessions returns the number of live sessions.
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// AddToCart validates the product and merges it into the session's pending
// cart. Adding a product that is already in the cart sums the quantities, so
// the cart builds up incrementally across conversation turns.
func (sm *SessionManager) AddToCart(session *Session, productID string, quantity int) (models.CartSnapshot, error) {
	// an unknown product is reported before a bad quantity
	if _, err := sm.catalog.GetByID(productID); err != nil {
		return models.CartSnapshot{}, err
	}
	if quantity < 1 {
		return models.CartSnapshot{}, models.ErrInvalidQuantity(productID, quantity)
	}

	merged := false
	for i := range session.Cart {
		if session.Cart[i].ProductID == productID {
			session.Cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		session.Cart = append(session.Cart, models.OrderLineItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	return sm.cartSnapshot(session), nil
}

// ClearCart empties the pending cart, used after explicit cancellation.
func (sm *SessionManager) ClearCart(session *Session) models.CartSnapshot {
	session.Cart = nil
	return models.CartSnapshot{LineItems: []models.OrderLineItem{}}
}

// Checkout hands the pending cart to the order log. On success the cart is
// cleared and the session remembers the order id; on any failure the cart
// is left untouched so the caller can amend it and retry.
func (sm *SessionManager) Checkout(session *Session) (*models.Order, error) {
	order, err := sm.orders.Place(session.Cart)
	if err != nil {
		return nil, err
	}

	session.Cart = nil
	session.LastOrderID = order.OrderID
	return order, nil
}

// Snapshot resolves the current cart for display, pricing it at today's
// catalog prices. Totals only freeze at checkout.
func (sm *SessionManager) Snapshot(session *Session) models.CartSnapshot {
	return sm.cartSnapshot(session)
}

func (sm *SessionManager) cartSnapshot(session *Session) models.CartSnapshot {
	items := make([]models.OrderLineItem, 0, len(session.Cart))
	var total float64
	for _, item := range session.Cart {
		line := item
		if product, err := sm.catalog.GetByID(item.ProductID); err == nil {
			line.Name = product.Name
			line.UnitPrice = product.Price
			total += product.Price * float64(item.Quantity)
		}
		items = append(items, line)
	}
	return models.CartSnapshot{
		LineItems:    items,
		RunningTotal: models.RoundCents(total),
	}
}

func (sm *SessionManager) cleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			sm.removeExpired(time.Now())
		}
	}
}

func (sm *SessionManager) removeExpired(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, session := range sm.sessions {
		if now.After(session.ExpiresAt) {
			delete(sm.sessions, id)
			log.Printf("Session expired: %s", id)
		}
	}
}

// Close stops the expiry loop. Live sessions are simply dropped; any order
// they already committed stays in the log.
func (sm *SessionManager) Close() {
	sm.stopOnce.Do(func() {
		close(sm.stop)
	})
}
