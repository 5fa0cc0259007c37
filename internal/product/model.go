package product

type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Unit        string   `json:"unit"`
	ImageURLs   []string `json:"imageUrls"`
	Stock       int      `json:"stock"`
	CategoryID  int64    `json:"categoryId"`
	FarmerID    int64    `json:"farmerId"`
	Organic     bool     `json:"organic"`
	Featured    bool     `json:"featured"`
}

type NewProductInput struct {
	Name        string
	Description string
	Price       float64
	Unit        string
	ImageURLs   []string
	Stock       int
	CategoryID  int64
	Organic     bool
	Featured    bool
}

// UpdateProductInput carries partial updates; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Unit        *string
	ImageURLs   []string
	Stock       *int
	CategoryID  *int64
	Organic     *bool
	Featured    *bool
}

// ListOptions filters and paginates the public product listing.
type ListOptions struct {
	CategoryID *int64
	Featured   *bool
	Limit      int
	Offset     int
}
