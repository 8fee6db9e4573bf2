package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/drillfleet/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// History writes the location audit table of one machine.
func (g *Generator) History(report model.HistoryReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := "Konum Geçmişi"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Makine")
	set("B1", report.Machine.Name)
	set("A2", "Durum")
	set("B2", report.Machine.Status.Label())
	set("A3", "Kayıt sayısı")
	set("B3", len(report.Records))
	set("A4", "Oluşturulma")
	set("B4", formatDateTime(report.GeneratedAt))

	tableRow := 6
	headers := []string{"Tarih", "Enlem", "Boylam", "Yön", "Doğruluk (m)", "Sondaj derinliği (m)", "Mazot (L)"}
	writeHeader(file, sheet, tableRow, headers)

	for i, r := range report.Records {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), formatDateTime(r.Timestamp))
		set(fmt.Sprintf("B%d", row), formatCoordinate(r.Latitude))
		set(fmt.Sprintf("C%d", row), formatCoordinate(r.Longitude))
		set(fmt.Sprintf("D%d", row), formatFloat(r.Heading, 1))
		set(fmt.Sprintf("E%d", row), formatFloat(r.Accuracy, 1))
		set(fmt.Sprintf("F%d", row), formatFloat(r.DrillingDepth, 2))
		set(fmt.Sprintf("G%d", row), formatFloat(r.FuelConsumption, 2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "C", 14)
	_ = file.SetColWidth(sheet, "D", "G", 18)
	return write(file)
}

// Shifts writes every shift of one machine with the finished-shift depth total.
func (g *Generator) Shifts(report model.ShiftReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := "Vardiyalar"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Makine")
	set("B1", report.Machine.Name)
	set("A2", "Vardiya sayısı")
	set("B2", len(report.Shifts))
	set("A3", "Toplam sondaj derinliği (m)")
	set("B3", formatFloat(report.TotalDrillingDepth, 2))
	set("A4", "Oluşturulma")
	set("B4", formatDateTime(report.GeneratedAt))

	tableRow := 6
	headers := []string{"Başlangıç", "Bitiş", "Durum", "Sondaj derinliği (m)", "Mazot (L)", "Çalışanlar", "Rapor"}
	writeHeader(file, sheet, tableRow, headers)

	for i, s := range report.Shifts {
		row := tableRow + 1 + i
		status := "Tamamlandı"
		end := ""
		if s.Active() {
			status = "Aktif"
		} else {
			end = formatDateTime(*s.EndTime)
		}
		set(fmt.Sprintf("A%d", row), formatDateTime(s.StartTime))
		set(fmt.Sprintf("B%d", row), end)
		set(fmt.Sprintf("C%d", row), status)
		set(fmt.Sprintf("D%d", row), formatFloat(s.DrillingDepth, 2))
		set(fmt.Sprintf("E%d", row), formatFloat(s.FuelConsumption, 2))
		set(fmt.Sprintf("F%d", row), workerList(s.Workers, report.WorkerNames))
		set(fmt.Sprintf("G%d", row), formatString(s.ReportImage))
	}

	_ = file.SetColWidth(sheet, "A", "B", 20)
	_ = file.SetColWidth(sheet, "C", "E", 18)
	_ = file.SetColWidth(sheet, "F", "F", 40)
	_ = file.SetColWidth(sheet, "G", "G", 50)
	return write(file)
}

func writeHeader(file *excelize.File, sheet string, row int, headers []string) {
	style, _ := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, header)
		if style != 0 {
			_ = file.SetCellStyle(sheet, cell, cell, style)
		}
	}
}

func write(file *excelize.File) ([]byte, error) {
	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func workerList(ids []int64, names map[int64]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok || name == "" {
			name = fmt.Sprintf("#%d", id)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatCoordinate(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

func formatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}
