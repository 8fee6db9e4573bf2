package model

type MachineStatus string

const (
	MachineStatusDrilling    MachineStatus = "DRILLING"
	MachineStatusMoving      MachineStatus = "MOVING"
	MachineStatusMaintenance MachineStatus = "MAINTENANCE"
	MachineStatusIdle        MachineStatus = "IDLE"
	MachineStatusSetup       MachineStatus = "SETUP"
)

// Valid reports whether the status belongs to the fixed machine status set.
func (s MachineStatus) Valid() bool {
	switch s {
	case MachineStatusDrilling, MachineStatusMoving, MachineStatusMaintenance, MachineStatusIdle, MachineStatusSetup:
		return true
	}
	return false
}

// Label returns the operator-facing name of the status.
func (s MachineStatus) Label() string {
	switch s {
	case MachineStatusDrilling:
		return "Sondaj"
	case MachineStatusMoving:
		return "Nakliye"
	case MachineStatusMaintenance:
		return "Bakım"
	case MachineStatusIdle:
		return "Boşta"
	case MachineStatusSetup:
		return "Kurulum"
	default:
		return string(s)
	}
}

type Machine struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      MachineStatus `json:"status"`
	IsActive    bool          `json:"is_active"`
}

type LocationUpdate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Heading   float64 `json:"heading"`
	Accuracy  float64 `json:"accuracy" validate:"gte=0"`
	Timestamp string  `json:"timestamp"`
}
