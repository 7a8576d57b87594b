package models

// Product is a single catalog entry. The catalog is read-only reference
// data: products are loaded once at startup and never mutated afterwards.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"` // informational only, never reserved
}

// TableName maps the model onto the catalog database's products table.
func (Product) TableName() string {
	return "products"
}

// ProductSummary is the search-result shape sent back to the dialogue layer.
type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Price    float64 `json:"price"`
}

// Summary trims a product down to its search-result fields.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Color:    p.Color,
		Price:    p.Price,
	}
}
