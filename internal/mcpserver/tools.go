// Package mcpserver exposes the shopping operations as MCP tools so a
// voice-agent host can call them directly over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// SearchCatalogInput is the MCP tool input for catalog search.
type SearchCatalogInput struct {
	Query    string `json:"query" jsonschema:"search text matched against product names and descriptions"`
	Category string `json:"category,omitempty" jsonschema:"optional exact category filter"`
	Color    string `json:"color,omitempty" jsonschema:"optional exact color filter"`
}

// SearchCatalogResult lists matching products, best match first.
type SearchCatalogResult struct {
	Products []models.ProductSummary `json:"products"`
}

// AddToCartInput is the MCP tool input for adding a product to the cart.
type AddToCartInput struct {
	ProductID string `json:"product_id" jsonschema:"catalog product identifier"`
	Quantity  int    `json:"quantity" jsonschema:"number of units, at least 1"`
}

// CheckoutInput is empty: checkout operates on the conversation's cart.
type CheckoutInput struct{}

// CheckoutResult is the committed order.
type CheckoutResult struct {
	Order models.Order `json:"order"`
}

// GetLastOrderInput is empty: the most recent order needs no arguments.
type GetLastOrderInput struct{}

func SearchCatalogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_catalog",
		Description: "Searches the product catalog by text, optionally filtered by exact category and color.",
	}
}

func AddToCartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Adds a product to the conversation's pending cart, merging quantities for repeated products.",
	}
}

func CheckoutTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "checkout",
		Description: "Places an order for the conversation's current cart. The cart is cleared only on success.",
	}
}

func GetLastOrderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_last_order",
		Description: "Returns the most recently placed order, or an explicit empty result when no orders exist.",
	}
}

// SearchCatalogHandler executes a catalog search.
func SearchCatalogHandler(catalog *storage.Catalog) mcp.ToolHandlerFor[SearchCatalogInput, SearchCatalogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchCatalogInput) (*mcp.CallToolResult, SearchCatalogResult, error) {
		products, err := catalog.Search(input.Query, storage.SearchFilter{
			Category: input.Category,
			Color:    input.Color,
		})
		if err != nil {
			return nil, SearchCatalogResult{}, err
		}

		result := SearchCatalogResult{Products: make([]models.ProductSummary, len(products))}
		for i, p := range products {
			result.Products[i] = p.Summary()
		}
		return nil, result, nil
	}
}

// AddToCartHandler merges a product into the calling conversation's cart.
func AddToCartHandler(sessions *services.SessionManager) mcp.ToolHandlerFor[AddToCartInput, models.CartSnapshot] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddToCartInput) (*mcp.CallToolResult, models.CartSnapshot, error) {
		session := conversationSession(sessions, req)
		snapshot, err := sessions.AddToCart(session, input.ProductID, input.Quantity)
		if err != nil {
			return nil, models.CartSnapshot{}, err
		}
		return nil, snapshot, nil
	}
}

// CheckoutHandler places an order from the calling conversation's cart.
func CheckoutHandler(sessions *services.SessionManager) mcp.ToolHandlerFor[CheckoutInput, CheckoutResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ CheckoutInput) (*mcp.CallToolResult, CheckoutResult, error) {
		session := conversationSession(sessions, req)
		order, err := sessions.Checkout(session)
		if err != nil {
			return nil, CheckoutResult{}, err
		}
		return nil, CheckoutResult{Order: *order}, nil
	}
}

// GetLastOrderHandler returns the most recent committed order.
func GetLastOrderHandler(orders storage.OrderLog) mcp.ToolHandlerFor[GetLastOrderInput, models.LastOrderResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GetLastOrderInput) (*mcp.CallToolResult, models.LastOrderResult, error) {
		order, err := orders.Last()
		if err != nil {
			return nil, models.LastOrderResult{}, err
		}
		if order == nil {
			return nil, models.LastOrderResult{HasOrders: false}, nil
		}
		return nil, models.LastOrderResult{HasOrders: true, Order: order}, nil
	}
}

// conversationSession maps the MCP session onto a conversation session.
// Stdio transports may not carry a session id, in which case the whole
// connection is one conversation.
func conversationSession(sessions *services.SessionManager, req *mcp.CallToolRequest) *services.Session {
	id := ""
	if req != nil && req.Session != nil {
		id = req.Session.ID()
	}
	if id == "" {
		id = "mcp-local"
	}
	return sessions.GetOrCreate(id)
}
