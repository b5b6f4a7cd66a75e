package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
)

// LineDTO is one cart row in responses.
type LineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Stock     int             `json:"stock"`
}

// CartDTO is the cart payload with notices drained from the session.
type CartDTO struct {
	Lines   []LineDTO       `json:"lines"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Notices []visitor.Flash `json:"notices"`
}

func NewCartDTO(c *Cart, notices []visitor.Flash) CartDTO {
	dto := CartDTO{
		Lines:   []LineDTO{},
		Count:   c.Count(),
		Total:   c.Total(),
		Notices: notices,
	}
	if dto.Notices == nil {
		dto.Notices = []visitor.Flash{}
	}
	for line := range c.Items() {
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Slug:      line.Product.Slug,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
			Stock:     line.Product.Stock,
		})
	}
	return dto
}
