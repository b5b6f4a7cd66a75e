package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Products are never hard-deleted; staff mark
// them unavailable instead.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Slug           string          `gorm:"column:slug;not null;uniqueIndex"`
	Manufacturer   string          `gorm:"column:manufacturer;not null;default:''"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:price > 0"`
	Stock          int             `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	Available      bool            `gorm:"column:available;not null;default:true"`
	Description    string          `gorm:"column:description;not null;default:''"`
	Specifications string          `gorm:"column:specifications;not null;default:''"`
	ImageURL       *string         `gorm:"column:image_url"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
