package notify

import "time"

// StockOutLine is one item leaving stock.
type StockOutLine struct {
	ItemName string `json:"item_name"`
	SKU      string `json:"sku,omitempty"`
	Unit     string `json:"unit"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// StockOutEvent is emitted once per successful stock-out request,
// single or batched.
type StockOutEvent struct {
	Shop  string         `json:"shop"`
	Lines []StockOutLine `json:"lines"`
	At    time.Time      `json:"at"`
}

// Dispatcher accepts events without blocking the caller and never reports failure.
type Dispatcher interface {
	Notify(ev StockOutEvent)
}

// Message is the bridge payload: {to, subject, html}.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
