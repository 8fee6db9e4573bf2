package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/drillfleet/internal/model"
)

// Generator renders the end-of-shift sheet with a core font. Core fonts are cp1252, so
// Turkish letters outside it are folded to their Latin base letter.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

var turkishFold = strings.NewReplacer(
	"ş", "s", "Ş", "S",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
)

func (g *Generator) ShiftReport(doc model.ShiftDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	utf := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string { return utf(turkishFold.Replace(s)) }

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Vardiya Raporu"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Makine: %s (%s)", doc.Machine.Name, doc.Machine.Status.Label())), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Vardiya #%d", doc.Shift.ID)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Vardiya bilgileri"), "", 1, "L", false, 0, "")

	widths := []float64{70, 110}
	drawTableRow(pdf, g.fontName, []string{tr("Başlangıç"), formatDateTime(doc.Shift.StartTime)}, widths, false)
	end := "-"
	if doc.Shift.EndTime != nil {
		end = formatDateTime(*doc.Shift.EndTime)
	}
	drawTableRow(pdf, g.fontName, []string{tr("Bitiş"), end}, widths, false)
	drawTableRow(pdf, g.fontName, []string{tr("Süre"), formatDuration(doc.Shift)}, widths, false)
	drawTableRow(pdf, g.fontName, []string{tr("Sondaj derinliği"), formatAmount(doc.Shift.DrillingDepth, 2) + " m"}, widths, false)
	drawTableRow(pdf, g.fontName, []string{tr("Mazot tüketimi"), formatAmount(doc.Shift.FuelConsumption, 2) + " L"}, widths, false)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Çalışanlar"), "", 1, "L", false, 0, "")
	if len(doc.Workers) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
	} else {
		crewWidths := []float64{120, 60}
		drawTableRow(pdf, g.fontName, []string{tr("Ad Soyad"), tr("Rol")}, crewWidths, true)
		for _, w := range doc.Workers {
			drawTableRow(pdf, g.fontName, []string{tr(w.FullName()), tr(roleLabel(w.Role))}, crewWidths, false)
		}
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Mazot kayıtları"), "", 1, "L", false, 0, "")
	if len(doc.Fuel) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
	} else {
		fuelWidths := []float64{50, 30, 100}
		drawTableRow(pdf, g.fontName, []string{tr("Tarih"), tr("Miktar (L)"), tr("Not")}, fuelWidths, true)
		total := 0.0
		for _, f := range doc.Fuel {
			total += f.Amount
			drawTableRow(pdf, g.fontName, []string{formatDateTime(f.Timestamp), formatAmount(f.Amount, 2), tr(safeValue(f.Notes))}, fuelWidths, false)
		}
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Toplam: %s L", formatAmount(total, 2))), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr("Sorumlu mühendis: ______________________"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 8)
	pdf.CellFormat(0, 6, tr("Oluşturulma: "+formatDateTime(doc.GeneratedAt)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleWorker:
		return "İşçi"
	case model.RoleEngineer:
		return "Mühendis"
	case model.RoleManager:
		return "Yönetici"
	default:
		return string(role)
	}
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, value)
}

func formatDuration(s model.Shift) string {
	if s.EndTime == nil {
		return "-"
	}
	d := s.EndTime.Sub(s.StartTime).Round(time.Minute)
	return fmt.Sprintf("%d sa %d dk", int(d.Hours()), int(d.Minutes())%60)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}
