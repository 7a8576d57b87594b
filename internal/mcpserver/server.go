package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

const (
	serverName    = "lyra-shop"
	serverVersion = "1.0.0"
)

// New assembles the MCP server exposing the shopping operations as tools.
func New(catalog *storage.Catalog, orders storage.OrderLog, sessions *services.SessionManager) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, SearchCatalogTool(), SearchCatalogHandler(catalog))
	mcp.AddTool(server, AddToCartTool(), AddToCartHandler(sessions))
	mcp.AddTool(server, CheckoutTool(), CheckoutHandler(sessions))
	mcp.AddTool(server, GetLastOrderTool(), GetLastOrderHandler(orders))

	return server
}

// Serve runs the server on stdio and blocks until it stops or the context
// ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
