package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// Operation names accepted by Dispatch. The set is closed: the dialogue
// layer's function-call schema and this list move together.
const (
	OpSearchCatalog = "search_catalog"
	OpAddToCart     = "add_to_cart"
	OpCheckout      = "checkout"
	OpGetLastOrder  = "get_last_order"
)

// Dispatcher is the single entry point mapping a named operation plus the
// loosely-typed argument mapping produced by the dialogue layer onto
// catalog, cart and order operations. Arguments are validated before
// anything is delegated; unknown argument fields are ignored.
type Dispatcher struct {
	catalog  *storage.Catalog
	orders   storage.OrderLog
	sessions *SessionManager
}

// NewDispatcher creates a dispatcher over the given components.
func NewDispatcher(catalog *storage.Catalog, orders storage.OrderLog, sessions *SessionManager) *Dispatcher {
	return &Dispatcher{
		catalog:  catalog,
		orders:   orders,
		sessions: sessions,
	}
}

// Dispatch executes one operation against the given session. Every failure
// is a typed *models.Error; failures from the catalog, cart or order log
// pass through unchanged. Side effects are confined to the session and the
// order log; the catalog is never mutated.
func (d *Dispatcher) Dispatch(session *Session, operation string, args map[string]any) (any, error) {
	switch operation {
	case OpSearchCatalog:
		return d.searchCatalog(args)
	case OpAddToCart:
		return d.addToCart(session, args)
	case OpCheckout:
		return d.sessions.Checkout(session)
	case OpGetLastOrder:
		return d.getLastOrder()
	default:
		return nil, models.ErrUnknownOperation(operation)
	}
}

func (d *Dispatcher) searchCatalog(args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	category, err := stringArg(args, "category", false)
	if err != nil {
		return nil, err
	}
	color, err := stringArg(args, "color", false)
	if err != nil {
		return nil, err
	}

	products, err := d.catalog.Search(query, storage.SearchFilter{Category: category, Color: color})
	if err != nil {
		return nil, err
	}

	results := make([]models.ProductSummary, len(products))
	for i, p := range products {
		results[i] = p.Summary()
	}
	return results, nil
}

func (d *Dispatcher) addToCart(session *Session, args map[string]any) (any, error) {
	productID, err := stringArg(args, "product_id", true)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(productID) == "" {
		return nil, models.ErrInvalidArgument("product_id", "must not be empty")
	}
	quantity, err := intArg(args, "quantity")
	if err != nil {
		return nil, err
	}
	return d.sessions.AddToCart(session, productID, quantity)
}

func (d *Dispatcher) getLastOrder() (any, error) {
	order, err := d.orders.Last()
	if err != nil {
		return nil, err
	}
	if order == nil {
		return models.LastOrderResult{HasOrders: false}, nil
	}
	return models.LastOrderResult{HasOrders: true, Order: order}, nil
}

// stringArg reads a string field. Required fields must be present; absent
// optional fields come back empty.
func stringArg(args map[string]any, field string, required bool) (string, error) {
	value, ok := args[field]
	if !ok || value == nil {
		if required {
			return "", models.ErrMissingArgument(field)
		}
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", models.ErrInvalidArgument(field, "expected a string")
	}
	return s, nil
}

// intArg reads a required integer field. JSON numbers arrive as float64,
// and the dialogue layer's model sometimes sends digits as strings, so both
// are accepted as long as the value is integral.
func intArg(args map[string]any, field string) (int, error) {
	value, ok := args[field]
	if !ok || value == nil {
		return 0, models.ErrMissingArgument(field)
	}
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, models.ErrInvalidArgument(field, "expected an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, models.ErrInvalidArgument(field, "expected an integer")
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, models.ErrInvalidArgument(field, "expected an integer")
		}
		return n, nil
	default:
		return 0, models.ErrInvalidArgument(field, "expected an integer")
	}
}
