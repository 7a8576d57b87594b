package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lyralabs/lyra-backend/internal/models"
)

// Catalog is an immutable in-memory index over the product set. It is built
// once at startup and is safe for unlimited concurrent readers without
// locking.
type Catalog struct {
	byID     map[string]*models.Product
	products []*models.Product // ascending id
}

// SearchFilter narrows a catalog search to exact (case-insensitive)
// category and/or color matches.
type SearchFilter struct {
	Category string
	Color    string
}

func (f SearchFilter) empty() bool {
	return f.Category == "" && f.Color == ""
}

func (f SearchFilter) matches(p *models.Product) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, p.Category) {
		return false
	}
	if f.Color != "" && !strings.EqualFold(f.Color, p.Color) {
		return false
	}
	return true
}

// NewCatalog builds the index, enforcing id uniqueness and non-negative
// price and stock.
func NewCatalog(products []models.Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*models.Product, len(products))}
	for i := range products {
		p := products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("product at position %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %q has negative stock", p.ID)
		}
		c.byID[p.ID] = &p
		c.products = append(c.products, &p)
	}
	sort.Slice(c.products, func(i, j int) bool {
		return c.products[i].ID < c.products[j].ID
	})
	return c, nil
}

// Match ranks, lower sorts first. Ties break by ascending product id.
const (
	rankExactName = iota
	rankNameSubstring
	rankDescriptionSubstring
)

// Search returns the products matching query and filter, best match first.
// The query matches case-insensitively against name and description. An
// empty query with a filter browses all filter matches; an empty query with
// no filter is a usage error.
func (c *Catalog) Search(query string, filter SearchFilter) ([]*models.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" && filter.empty() {
		return nil, models.ErrInvalidQuery()
	}

	type match struct {
		product *models.Product
		rank    int
	}
	var matches []match
	for _, p := range c.products {
		if !filter.matches(p) {
			continue
		}
		if query == "" {
			matches = append(matches, match{p, rankDescriptionSubstring})
			continue
		}
		name := strings.ToLower(p.Name)
		switch {
		case name == query:
			matches = append(matches, match{p, rankExactName})
		case strings.Contains(name, query):
			matches = append(matches, match{p, rankNameSubstring})
		case strings.Contains(strings.ToLower(p.Description), query):
			matches = append(matches, match{p, rankDescriptionSubstring})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].product.ID < matches[j].product.ID
	})

	results := make([]*models.Product, len(matches))
	for i, m := range matches {
		results[i] = m.product
	}
	return results, nil
}

// GetByID returns the product with the given id.
func (c *Catalog) GetByID(id string) (*models.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, models.ErrProductNotFound(id)
	}
	return p, nil
}

// Len returns the number of indexed products.
func (c *Catalog) Len() int {
	return len(c.products)
}
