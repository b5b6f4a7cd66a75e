package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
)

// OrderItemDTO is one snapshot line of a placed order.
type OrderItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderDTO exposes an order with its shipping details and items.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	Status         enums.OrderStatus `json:"status"`
	Paid           bool              `json:"paid"`
	Total          decimal.Decimal   `json:"total"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	PostalCode     string            `json:"postal_code"`
	Items          []OrderItemDTO    `json:"items"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// OrderSummary is the order history row.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	Status     enums.OrderStatus `json:"status"`
	Paid       bool              `json:"paid"`
	Total      decimal.Decimal   `json:"total"`
	TotalItems int               `json:"total_items"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderList wraps the paginated history plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// NewOrderDTO maps the model and its preloaded items.
func NewOrderDTO(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Round(2),
			Subtotal:    item.Subtotal().Round(2),
		})
	}
	return OrderDTO{
		ID:             o.ID,
		Status:         o.Status,
		Paid:           o.Paid,
		Total:          o.Total.Round(2),
		TrackingNumber: o.TrackingNumber,
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		Email:          o.Email,
		Phone:          o.Phone,
		Address:        o.Address,
		City:           o.City,
		PostalCode:     o.PostalCode,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func newOrderSummary(o models.Order) OrderSummary {
	units := 0
	for _, item := range o.Items {
		units += item.Quantity
	}
	return OrderSummary{
		ID:         o.ID,
		Status:     o.Status,
		Paid:       o.Paid,
		Total:      o.Total.Round(2),
		TotalItems: units,
		CreatedAt:  o.CreatedAt,
	}
}
