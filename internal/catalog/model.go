package catalog

import "time"

// Product is the catalog document. Stock is the per-product availability
// counter mutated at checkout.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Stock       int       `json:"stock"`
	Featured    bool      `json:"featured"`
	Bestseller  bool      `json:"bestseller"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows List results. Zero value lists everything.
type Filter struct {
	Category   string
	Featured   bool
	Bestseller bool
	Limit      int
}
