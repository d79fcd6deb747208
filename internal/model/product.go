package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	SKU      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	EAN      string          `gorm:"type:varchar(20);index" json:"ean,omitempty" validate:"omitempty,numeric,max=20"`
	Category string          `gorm:"type:varchar(50);index" json:"category"`
	Unit     string          `gorm:"type:varchar(20)" json:"unit"`
	MinStock decimal.Decimal `gorm:"type:numeric(14,3);default:0" json:"min_stock" validate:"decimal_gte0,decimal_scale=3"`
	Supplier string          `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	PhotoKey *string         `gorm:"type:varchar(512)" json:"photo_key,omitempty"`
}
