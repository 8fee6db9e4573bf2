package model

import "time"

type Shift struct {
	ID              int64      `json:"id"`
	MachineID       int64      `json:"machine"`
	Workers         []int64    `json:"workers"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DrillingDepth   float64    `json:"drilling_depth"`
	FuelConsumption float64    `json:"fuel_consumption"`
	ReportImage     *string    `json:"report_image"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Active reports whether the shift has not been ended yet.
func (s Shift) Active() bool {
	return s.EndTime == nil
}

// HasWorker reports whether the worker is part of the shift crew.
func (s Shift) HasWorker(workerID int64) bool {
	for _, id := range s.Workers {
		if id == workerID {
			return true
		}
	}
	return false
}

type CreateShiftRequest struct {
	MachineID       int64     `json:"machine"`
	StartTime       time.Time `json:"start_time"`
	DrillingDepth   float64   `json:"drilling_depth"`
	FuelConsumption float64   `json:"fuel_consumption"`
	Workers         []int64   `json:"workers"`
	StartLocation   *int64    `json:"start_location"`
}

type EndShiftRequest struct {
	EndTime         time.Time
	DrillingDepth   float64
	FuelConsumption float64
	EndLocation     *int64
	ReportImage     *ReportImage
}

// ReportImage is the photo of the paper shift report uploaded on end.
type ReportImage struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ShiftWorkerRequest struct {
	WorkerID int64 `json:"worker_id"`
}
