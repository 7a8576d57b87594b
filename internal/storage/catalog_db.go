package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lyralabs/lyra-backend/internal/models"
)

// LoadCatalogDB reads the full products table once and builds the index.
// The database is purely a catalog source; nothing in the order path ever
// writes back to it, so the connection can be closed after loading.
func LoadCatalogDB(db *gorm.DB) (*Catalog, error) {
	var products []models.Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return NewCatalog(products)
}
