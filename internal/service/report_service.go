package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/drillfleet/internal/model"
)

type ExcelGenerator interface {
	History(report model.HistoryReport) ([]byte, error)
	Shifts(report model.ShiftReport) ([]byte, error)
}

type PDFGenerator interface {
	ShiftReport(doc model.ShiftDocument) ([]byte, error)
}

type GenerateReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ReportService renders downloadable versions of the history table and shift records.
type ReportService struct {
	machines  *MachineService
	history   *HistoryService
	shifts    *ShiftManager
	fuel      *FuelLedger
	workforce *WorkforceService
	excel     ExcelGenerator
	pdf       PDFGenerator
	now       func() time.Time
}

func NewReportService(machines *MachineService, history *HistoryService, shifts *ShiftManager, fuel *FuelLedger, workforce *WorkforceService, excel ExcelGenerator, pdf PDFGenerator) *ReportService {
	return &ReportService{
		machines:  machines,
		history:   history,
		shifts:    shifts,
		fuel:      fuel,
		workforce: workforce,
		excel:     excel,
		pdf:       pdf,
		now:       time.Now,
	}
}

func (s *ReportService) HistoryExport(ctx context.Context, machineID int64) (*GenerateReportResult, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	records, err := s.history.List(ctx, machineID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.History(model.HistoryReport{Machine: *machine, Records: records, GeneratedAt: s.now()})
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName:    s.buildFileName("konum-gecmisi", *machine, "xlsx"),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}

func (s *ReportService) ShiftsExport(ctx context.Context, machineID int64) (*GenerateReportResult, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	state, err := s.shifts.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	names, err := s.workforce.WorkerNames(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Shifts(model.ShiftReport{
		Machine:            *machine,
		Shifts:             state.Shifts,
		WorkerNames:        names,
		TotalDrillingDepth: state.TotalDrillingDepth,
		GeneratedAt:        s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName:    s.buildFileName("vardiyalar", *machine, "xlsx"),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}

// ShiftReport prints one finished shift with its crew and fuel records.
func (s *ReportService) ShiftReport(ctx context.Context, machineID, shiftID int64) (*GenerateReportResult, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	shift, err := s.shifts.Shift(ctx, machineID, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Active() {
		return nil, fmt.Errorf("%w: shift %d has not ended", ErrInvalidInput, shiftID)
	}
	users, err := s.workforce.Users(ctx, "")
	if err != nil {
		return nil, err
	}
	crew := make([]model.User, 0, len(shift.Workers))
	for _, u := range users {
		if shift.HasWorker(u.ID) {
			crew = append(crew, u)
		}
	}
	fuel, err := s.fuel.ForShift(ctx, machineID, shiftID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.ShiftReport(model.ShiftDocument{
		Machine:     *machine,
		Shift:       *shift,
		Workers:     crew,
		Fuel:        fuel,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName:    s.buildFileName(fmt.Sprintf("vardiya-%d", shiftID), *machine, "pdf"),
		ContentType: contentTypePDF,
		Content:     content,
	}, nil
}

func (s *ReportService) buildFileName(kind string, machine model.Machine, ext string) string {
	target := sanitizeFileName(machine.Name)
	if target == "" {
		target = fmt.Sprintf("makine-%d", machine.ID)
	}
	return fmt.Sprintf("%s-%s-%s.%s", kind, target, s.now().Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
