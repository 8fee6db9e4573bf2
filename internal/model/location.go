package model

import "time"

// LocationSample is one normalized position of a machine.
type LocationSample struct {
	ID        int64     `json:"id"`
	MachineID int64     `json:"machine"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationRecord is a history row as the API returns it.
type LocationRecord struct {
	LocationSample
	DrillingDepth   float64 `json:"drilling_depth"`
	FuelConsumption float64 `json:"fuel_consumption"`
	ShiftID         *int64  `json:"shift_id"`
}

// WaypointRequest is the body posted for a manually placed history point.
type WaypointRequest struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Accuracy        float64 `json:"accuracy"`
	Heading         float64 `json:"heading"`
	DrillingDepth   float64 `json:"drilling_depth"`
	FuelConsumption float64 `json:"fuel_consumption"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MapBounds struct {
	Center Coordinate `json:"center"`
	Min    Coordinate `json:"min"`
	Max    Coordinate `json:"max"`
	Empty  bool       `json:"empty"`
}
