package model

type ProductEntity struct {
	ID          uint64  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description,omitempty"`
	Price       float64 `db:"price" json:"price"`
	ImageURL    string  `db:"image_url" json:"image_url,omitempty"`
	Origin      string  `db:"origin" json:"origin,omitempty"`
	Stock       int64   `db:"stock" json:"stock"`
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
	Origin      string  `json:"origin"`
	Stock       int64   `json:"stock" validate:"gte=0"`
}

type ProductListResponse struct {
	Items      []ProductEntity `json:"items"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
}
