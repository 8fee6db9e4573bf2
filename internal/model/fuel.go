package model

import "time"

type FuelRecord struct {
	ID         int64     `json:"id"`
	MachineID  int64     `json:"machine"`
	ShiftID    *int64    `json:"shift"`
	Amount     float64   `json:"amount"`
	LocationID *int64    `json:"location"`
	Notes      string    `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// FuelSummary is the fuel ledger of one machine; the total is computed by the API.
type FuelSummary struct {
	TotalConsumption float64      `json:"total_consumption"`
	History          []FuelRecord `json:"history"`
}

type FuelInput struct {
	MachineID  int64   `json:"machine"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	ShiftID    *int64  `json:"shift,omitempty"`
	LocationID *int64  `json:"location,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	Timestamp  string  `json:"timestamp"`
}
