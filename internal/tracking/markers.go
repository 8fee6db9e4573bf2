package tracking

import (
	"time"

	"github.com/nurpe/drillfleet/internal/model"
)

const (
	ColorSelected = "#7c3aed"
	ColorInactive = "#9ca3af"
)

var statusColors = map[model.MachineStatus]string{
	model.MachineStatusDrilling:    "#2563eb",
	model.MachineStatusMoving:      "#f59e0b",
	model.MachineStatusMaintenance: "#dc2626",
	model.MachineStatusIdle:        "#9ca3af",
	model.MachineStatusSetup:       "#10b981",
}

// StatusColor returns the marker colour for a status; unknown statuses render as idle.
func StatusColor(status model.MachineStatus) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return statusColors[model.MachineStatusIdle]
}

type WorkerBadge struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Surname string     `json:"surname"`
	Role    model.Role `json:"role"`
}

// Marker is one machine drawn on the map at its latest known position.
type Marker struct {
	MachineID   int64               `json:"machine_id"`
	Name        string              `json:"name"`
	Status      model.MachineStatus `json:"status"`
	StatusLabel string              `json:"status_label"`
	Color       string              `json:"color"`
	Latitude    float64             `json:"latitude"`
	Longitude   float64             `json:"longitude"`
	Heading     float64             `json:"heading"`
	Accuracy    float64             `json:"accuracy"`
	Timestamp   time.Time           `json:"timestamp"`
	Selected    bool                `json:"selected"`
	Workers     []WorkerBadge       `json:"workers"`
}
