package storage

import "github.com/lyralabs/lyra-backend/internal/models"

// ProductFinder is the read-only catalog view that order placement and cart
// validation check product ids against.
type ProductFinder interface {
	GetByID(id string) (*models.Product, error)
}

// OrderLog is the durable order history consumed by the dispatcher and the
// session layer.
type OrderLog interface {
	// Place validates the line items, assigns the next order id, computes
	// the frozen total and durably appends the order.
	Place(items []models.OrderLineItem) (*models.Order, error)

	// Last returns the most recently committed order, or nil when the
	// store holds no orders yet.
	Last() (*models.Order, error)

	// Get returns a specific committed order by id.
	Get(id int64) (*models.Order, error)
}
