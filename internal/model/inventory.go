package model

import "time"

type InventoryItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	MinQuantity float64   `json:"min_quantity"`
	Unit        string    `json:"unit"`
	Image       *string   `json:"image"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Critical reports whether stock has fallen to or below the configured minimum.
func (i InventoryItem) Critical() bool {
	return i.Quantity <= i.MinQuantity
}

type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

type InventoryTransaction struct {
	ID                     int64           `json:"id"`
	ItemID                 int64           `json:"item"`
	ItemName               string          `json:"item_name"`
	Quantity               float64         `json:"quantity"`
	TransactionType        TransactionType `json:"transaction_type"`
	TransactionTypeDisplay string          `json:"transaction_type_display"`
	Notes                  string          `json:"notes"`
	CreatedAt              time.Time       `json:"created_at"`
}

// InventoryItemInput carries the editable fields of an item. Nil fields are left out of
// partial updates.
type InventoryItemInput struct {
	Name        *string      `validate:"omitempty,min=1"`
	Description *string
	Quantity    *float64     `validate:"omitempty,gte=0"`
	MinQuantity *float64     `validate:"omitempty,gte=0"`
	Unit        *string
	Image       *ReportImage
}

type StockChange struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Notes    string  `json:"notes,omitempty"`
}
