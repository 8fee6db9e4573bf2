package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/nurpe/drillfleet/internal/model"
)

func TestShiftReportRenders(t *testing.T) {
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	end := start.Add(11*time.Hour + 30*time.Minute)
	shiftID := int64(5)

	data, err := NewGenerator().ShiftReport(model.ShiftDocument{
		Machine: model.Machine{Name: "Sondaj-1", Status: model.MachineStatusDrilling},
		Shift:   model.Shift{ID: shiftID, StartTime: start, EndTime: &end, DrillingDepth: 42.5},
		Workers: []model.User{{Name: "Şükrü", Surname: "Işık", Role: model.RoleWorker}},
		Fuel:    []model.FuelRecord{{ShiftID: &shiftID, Amount: 120, Timestamp: start}},
	})
	if err != nil {
		t.Fatalf("ShiftReport: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a pdf")
	}
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	end := start.Add(11*time.Hour + 30*time.Minute)
	if got := formatDuration(model.Shift{StartTime: start, EndTime: &end}); got != "11 sa 30 dk" {
		t.Errorf("got %q", got)
	}
	if got := formatDuration(model.Shift{StartTime: start}); got != "-" {
		t.Errorf("open shift = %q", got)
	}
}
