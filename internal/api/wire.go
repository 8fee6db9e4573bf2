package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/drillfleet/internal/model"
)

// number accepts JSON numbers, numeric strings and null. Decimal columns arrive as strings.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseTimePtr keeps null-ness from the raw field: a present but unreadable value still
// yields a non-nil (zero) time, so a finished shift never reads as running.
func parseTimePtr(raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	t := parseTime(*raw)
	return &t
}

type wireLocation struct {
	ID            int64   `json:"id"`
	Machine       int64   `json:"machine"`
	Latitude      number  `json:"latitude"`
	Longitude     number  `json:"longitude"`
	Heading       *number `json:"heading"`
	Accuracy      *number `json:"accuracy"`
	Timestamp     string  `json:"timestamp"`
	DrillingDepth number  `json:"drilling_depth"`
	FuelUsed      number  `json:"fuel_consumption"`
	ShiftID       *int64  `json:"shift_id"`
}

// sample normalizes coordinates to floats; missing heading and accuracy become 0.
func (w wireLocation) sample() model.LocationSample {
	s := model.LocationSample{
		ID:        w.ID,
		MachineID: w.Machine,
		Latitude:  float64(w.Latitude),
		Longitude: float64(w.Longitude),
		Timestamp: parseTime(w.Timestamp),
	}
	if w.Heading != nil {
		s.Heading = float64(*w.Heading)
	}
	if w.Accuracy != nil {
		s.Accuracy = float64(*w.Accuracy)
	}
	return s
}

func (w wireLocation) record() model.LocationRecord {
	return model.LocationRecord{
		LocationSample:  w.sample(),
		DrillingDepth:   float64(w.DrillingDepth),
		FuelConsumption: float64(w.FuelUsed),
		ShiftID:         w.ShiftID,
	}
}

type wireShift struct {
	ID              int64   `json:"id"`
	Machine         int64   `json:"machine"`
	Workers         []int64 `json:"workers"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DrillingDepth   number  `json:"drilling_depth"`
	FuelConsumption number  `json:"fuel_consumption"`
	ReportImage     *string `json:"report_image"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (w wireShift) shift(media string) model.Shift {
	workers := w.Workers
	if workers == nil {
		workers = []int64{}
	}
	return model.Shift{
		ID:              w.ID,
		MachineID:       w.Machine,
		Workers:         workers,
		StartTime:       parseTime(w.StartTime),
		EndTime:         parseTimePtr(w.EndTime),
		DrillingDepth:   float64(w.DrillingDepth),
		FuelConsumption: float64(w.FuelConsumption),
		ReportImage:     mediaURL(media, w.ReportImage),
		CreatedAt:       parseTime(w.CreatedAt),
		UpdatedAt:       parseTime(w.UpdatedAt),
	}
}

type wireFuel struct {
	ID        int64  `json:"id"`
	Machine   int64  `json:"machine"`
	Shift     *int64 `json:"shift"`
	Amount    number `json:"amount"`
	Location  *int64 `json:"location"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"created_at"`
}

func (w wireFuel) record() model.FuelRecord {
	return model.FuelRecord{
		ID:         w.ID,
		MachineID:  w.Machine,
		ShiftID:    w.Shift,
		Amount:     float64(w.Amount),
		LocationID: w.Location,
		Notes:      w.Notes,
		Timestamp:  parseTime(w.Timestamp),
		CreatedAt:  parseTime(w.CreatedAt),
	}
}

type wireFuelSummary struct {
	TotalConsumption number     `json:"total_consumption"`
	History          []wireFuel `json:"history"`
}

type wireInventoryItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    number  `json:"quantity"`
	MinQuantity number  `json:"min_quantity"`
	Unit        string  `json:"unit"`
	Image       *string `json:"image"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (w wireInventoryItem) item(media string) model.InventoryItem {
	return model.InventoryItem{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Quantity:    float64(w.Quantity),
		MinQuantity: float64(w.MinQuantity),
		Unit:        w.Unit,
		Image:       w.Image,
		ImageURL:    mediaURL(media, w.ImageURL),
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
}

type wireTransaction struct {
	ID                     int64  `json:"id"`
	Item                   int64  `json:"item"`
	ItemName               string `json:"item_name"`
	Quantity               number `json:"quantity"`
	TransactionType        string `json:"transaction_type"`
	TransactionTypeDisplay string `json:"transaction_type_display"`
	Notes                  string `json:"notes"`
	CreatedAt              string `json:"created_at"`
}

func (w wireTransaction) transaction() model.InventoryTransaction {
	return model.InventoryTransaction{
		ID:                     w.ID,
		ItemID:                 w.Item,
		ItemName:               w.ItemName,
		Quantity:               float64(w.Quantity),
		TransactionType:        model.TransactionType(w.TransactionType),
		TransactionTypeDisplay: w.TransactionTypeDisplay,
		Notes:                  w.Notes,
		CreatedAt:              parseTime(w.CreatedAt),
	}
}

type wireAssignment struct {
	ID         int64   `json:"id"`
	Worker     int64   `json:"worker"`
	Machine    int64   `json:"machine"`
	AssignedBy *int64  `json:"assigned_by"`
	AssignedAt string  `json:"assigned_at"`
	EndedAt    *string `json:"ended_at"`
	IsActive   bool    `json:"is_active"`
}

func (w wireAssignment) assignment() model.WorkerAssignment {
	return model.WorkerAssignment{
		ID:         w.ID,
		WorkerID:   w.Worker,
		MachineID:  w.Machine,
		AssignedBy: w.AssignedBy,
		AssignedAt: parseTime(w.AssignedAt),
		EndedAt:    parseTimePtr(w.EndedAt),
		IsActive:   w.IsActive,
	}
}

// mediaURL prefixes relative upload paths with the media host; absolute URLs pass through.
func mediaURL(media string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	if strings.HasPrefix(*path, "http") {
		return path
	}
	full := media + *path
	if !strings.HasPrefix(*path, "/") {
		full = media + "/" + *path
	}
	return &full
}
