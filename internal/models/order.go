package models

import (
	"math"
	"time"
)

// OrderLineItem references a catalog product by id. Name and unit price are
// resolved when the order is placed and frozen, so later catalog changes
// never rewrite order history. Cart entries carry only id and quantity.
type OrderLineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

// Order is one committed purchase. Orders are immutable once placed and are
// only ever created by the order log, which assigns the id.
type Order struct {
	OrderID   int64           `json:"order_id"`
	Timestamp time.Time       `json:"timestamp"`
	LineItems []OrderLineItem `json:"line_items"`
	Total     float64         `json:"total"`
}

// CartSnapshot is returned after cart mutations so the dialogue layer can
// read the running state back to the user.
type CartSnapshot struct {
	LineItems    []OrderLineItem `json:"line_items"`
	RunningTotal float64         `json:"running_total"`
}

// LastOrderResult wraps get_last_order so an empty history is an explicit
// result rather than an error.
type LastOrderResult struct {
	HasOrders bool   `json:"has_orders"`
	Order     *Order `json:"order,omitempty"`
}

// RoundCents normalizes a money amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
