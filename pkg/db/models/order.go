package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
)

// Order is a placed purchase. Total and item prices are snapshots taken at
// placement time and never follow later catalog edits.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID         *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	FirstName      string            `gorm:"column:first_name;not null"`
	LastName       string            `gorm:"column:last_name;not null"`
	Email          string            `gorm:"column:email;not null"`
	Phone          string            `gorm:"column:phone;not null;default:''"`
	Address        string            `gorm:"column:address;not null"`
	City           string            `gorm:"column:city;not null"`
	PostalCode     string            `gorm:"column:postal_code;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'placed'"`
	Paid           bool              `gorm:"column:paid;not null;default:false"`
	Total          decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	TrackingNumber *string           `gorm:"column:tracking_number"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one purchased product.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal is quantity times the snapshot price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal recomputes the total from the item snapshots.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
