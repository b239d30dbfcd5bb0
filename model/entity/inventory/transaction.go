package inventory

import (
	"time"

	"gorm.io/datatypes"
)

type TransactionType string

const (
	TypeIn  TransactionType = "IN"
	TypeOut TransactionType = "OUT"
)

func (t TransactionType) Valid() bool {
	return t == TypeIn || t == TypeOut
}

// UnknownItemName is shown for ledger rows whose item was deleted.
const UnknownItemName = "Unknown item"

// Transaction represents the transactions table. ItemID is a weak reference:
// deleting an item leaves its rows in place.
type Transaction struct {
	ID              uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ItemID          uint            `gorm:"column:item_id;not null;index" json:"item_id"`
	Type            TransactionType `gorm:"column:type;type:varchar(3);not null" json:"type"`
	Quantity        int             `gorm:"column:quantity;not null" json:"quantity"`
	Notes           string          `gorm:"column:notes;type:text" json:"notes"`
	Shop            string          `gorm:"column:shop;type:varchar(255)" json:"shop,omitempty"`
	TransactionDate *datatypes.Date `gorm:"column:transaction_date" json:"transaction_date,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Signed returns the effect of the row on its item's quantity.
func (t *Transaction) Signed() int {
	if t.Type == TypeOut {
		return -t.Quantity
	}
	return t.Quantity
}

// EffectiveDate is TransactionDate when set, otherwise the creation time.
func (t *Transaction) EffectiveDate() time.Time {
	if t.TransactionDate != nil {
		return time.Time(*t.TransactionDate)
	}
	return t.CreatedAt
}

// TransactionView is a ledger row joined with its item's display fields.
type TransactionView struct {
	Transaction `gorm:"embedded"`
	ItemName    string `gorm:"column:item_name" json:"item_name"`
	ItemSKU     string `gorm:"column:item_sku" json:"item_sku"`
	ItemUnit    string `gorm:"column:item_unit" json:"item_unit"`
}

// DisplayName falls back to UnknownItemName for orphaned rows.
func (v *TransactionView) DisplayName() string {
	if v.ItemName == "" {
		return UnknownItemName
	}
	return v.ItemName
}
