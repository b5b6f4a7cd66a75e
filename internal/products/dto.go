package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Manufacturer   string          `json:"manufacturer"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	Available      bool            `json:"available"`
	InStock        bool            `json:"in_stock"`
	Description    string          `json:"description"`
	Specifications string          `json:"specifications"`
	ImageURL       *string         `json:"image_url,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResult is one page of the public catalog.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO maps the model into its response shape.
func NewProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Manufacturer:   p.Manufacturer,
		Price:          p.Price.Round(2),
		Stock:          p.Stock,
		Available:      p.Available,
		InStock:        p.Stock > 0,
		Description:    p.Description,
		Specifications: p.Specifications,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
