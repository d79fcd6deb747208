package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimals stored for a quantity.
const QuantityScale = 3

// FitsScale reports whether d has no more than places decimals, so the
// database stores it without rounding.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// StockEntry is the quantity on hand of one product at one location.
// Quantity may be negative after an over-booking.
type StockEntry struct {
	ProductID  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"product_id"`
	LocationID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"location_id"`
	Quantity   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (StockEntry) TableName() string {
	return "stock"
}

// StockedProduct is a product together with its quantity at one location.
type StockedProduct struct {
	Product    Product         `json:"product"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// StockRow is one line of the stock overview and export.
type StockRow struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	MinStock     decimal.Decimal `json:"min_stock"`
	LocationID   uuid.UUID       `json:"location_id"`
	LocationName string          `json:"location_name"`
	Quantity     decimal.Decimal `json:"quantity"`
}
