package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lyralabs/lyra-backend/internal/models"
)

// LoadCatalogFile reads a JSON product dataset and builds the index. The
// file holds a flat array of products, the same shape the voice agent's
// seed catalog uses.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalog(products)
}
