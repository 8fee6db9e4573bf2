package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/drillfleet/internal/model"
)

func TestShiftsSheet(t *testing.T) {
	end := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	report := model.ShiftReport{
		Machine: model.Machine{ID: 1, Name: "R-1"},
		Shifts: []model.Shift{
			{ID: 1, StartTime: end.Add(-12 * time.Hour), EndTime: &end, DrillingDepth: 42.5, Workers: []int64{7, 9}},
			{ID: 2, StartTime: end.Add(time.Hour), Workers: []int64{7}},
		},
		WorkerNames:        map[int64]string{7: "Ali Kaya"},
		TotalDrillingDepth: 42.5,
	}

	data, err := NewGenerator().Shifts(report)
	if err != nil {
		t.Fatalf("Shifts: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	cases := map[string]string{
		"B3": "42.50",
		"C7": "Tamamlandı",
		"F7": "Ali Kaya, #9",
		"C8": "Aktif",
		"B8": "",
	}
	for cell, want := range cases {
		got, _ := f.GetCellValue("Vardiyalar", cell)
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestHistorySheet(t *testing.T) {
	report := model.HistoryReport{
		Machine: model.Machine{Name: "R-2", Status: model.MachineStatusMoving},
		Records: []model.LocationRecord{
			{LocationSample: model.LocationSample{Latitude: 38.992688, Longitude: 37.845787}},
		},
	}
	data, err := NewGenerator().History(report)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Konum Geçmişi", "B7"); got != "38.992688" {
		t.Errorf("B7 = %q", got)
	}
	if got, _ := f.GetCellValue("Konum Geçmişi", "B2"); got != "Nakliye" {
		t.Errorf("B2 = %q", got)
	}
}
