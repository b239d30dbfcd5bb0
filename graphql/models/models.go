package models

import gql "github.com/graph-gophers/graphql-go"

// --- Item ---

type Item struct {
	ID         gql.ID  `json:"id"`
	Name       string  `json:"name"`
	SKU        *string `json:"sku,omitempty"`
	Category   *string `json:"category,omitempty"`
	Quantity   int32   `json:"quantity"`
	MinStock   int32   `json:"min_stock"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	ExpiryDate *string `json:"expiry_date,omitempty"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// --- Transaction ---

type Transaction struct {
	ID        gql.ID  `json:"id"`
	ItemID    gql.ID  `json:"item_id"`
	ItemName  string  `json:"item_name"`
	ItemSKU   *string `json:"item_sku,omitempty"`
	ItemUnit  *string `json:"item_unit,omitempty"`
	Type      string  `json:"type"`
	Quantity  int32   `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
	Shop      *string `json:"shop,omitempty"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"created_at"`
}

// --- Dashboard ---

type Summary struct {
	TotalItems         int32          `json:"total_items"`
	LowStock           int32          `json:"low_stock"`
	Categories         int32          `json:"categories"`
	TotalValue         float64        `json:"total_value"`
	HealthPercent      int32          `json:"health_percent"`
	LowStockItems      []*Item        `json:"low_stock_items"`
	TopItems           []*Item        `json:"top_items"`
	RecentTransactions []*Transaction `json:"recent_transactions"`
}

type ExpiringItem struct {
	Item            *Item `json:"item"`
	DaysUntilExpiry int32 `json:"days_until_expiry"`
	Soon            bool  `json:"soon"`
	VerySoon        bool  `json:"very_soon"`
}
