package inventory

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultUnit = "pcs"

// Item represents the items table: one stock-keeping unit and its current level.
type Item struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	SKU        string          `gorm:"column:sku;type:varchar(64);index" json:"sku"`
	Category   string          `gorm:"column:category;type:varchar(128);index" json:"category"`
	Quantity   int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	MinStock   int             `gorm:"column:min_stock;not null;default:0" json:"min_stock"`
	Unit       string          `gorm:"column:unit;type:varchar(32);not null;default:pcs" json:"unit"`
	Price      float64         `gorm:"column:price;type:decimal(12,2);not null;default:0" json:"price"`
	ExpiryDate *datatypes.Date `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// IsLowStock reports quantity at or below the reorder threshold.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// Status is "out", "low" or "ok", matching the dashboard filter.
func (i *Item) Status() string {
	switch {
	case i.Quantity == 0:
		return StatusOut
	case i.IsLowStock():
		return StatusLow
	default:
		return StatusOK
	}
}

const (
	StatusOut = "out"
	StatusLow = "low"
	StatusOK  = "ok"
)
