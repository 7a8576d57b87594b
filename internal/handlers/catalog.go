package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lyralabs/lyra-backend/internal/models"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// CatalogHandler exposes read-only catalog lookups.
type CatalogHandler struct {
	catalog *storage.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *storage.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Search handles product search with optional category/color filters.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	products, err := h.catalog.Search(c.Query("query"), storage.SearchFilter{
		Category: c.Query("category"),
		Color:    c.Query("color"),
	})
	if err != nil {
		return writeError(c, err)
	}

	results := make([]models.ProductSummary, len(products))
	for i, p := range products {
		results[i] = p.Summary()
	}
	return c.JSON(fiber.Map{"result": results})
}

// GetProduct retrieves one product by id, including its description and
// informational stock level.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"result": product})
}
