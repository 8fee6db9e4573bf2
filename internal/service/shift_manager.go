package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

type ShiftAPI interface {
	ListShifts(ctx context.Context, machineID int64) ([]model.Shift, error)
	CreateShift(ctx context.Context, machineID int64, req model.CreateShiftRequest) (*model.Shift, error)
	EndShift(ctx context.Context, shiftID int64, req model.EndShiftRequest) error
	AddShiftWorker(ctx context.Context, shiftID, workerID int64) error
	RemoveShiftWorker(ctx context.Context, shiftID, workerID int64) error
	DeleteShift(ctx context.Context, shiftID int64) error
}

// ShiftState is the derived view of one machine's shifts.
type ShiftState struct {
	Shifts             []model.Shift `json:"shifts"`
	Active             *model.Shift  `json:"active_shift"`
	TotalDrillingDepth float64       `json:"total_drilling_depth"`
}

// HasActive reports whether the machine is in the active-shift state.
func (s ShiftState) HasActive() bool { return s.Active != nil }

// ActiveShift returns the first shift without an end time, or nil.
func ActiveShift(shifts []model.Shift) *model.Shift {
	for i := range shifts {
		if shifts[i].Active() {
			s := shifts[i]
			return &s
		}
	}
	return nil
}

func countActive(shifts []model.Shift) int {
	n := 0
	for _, s := range shifts {
		if s.Active() {
			n++
		}
	}
	return n
}

// TotalDrillingDepth sums finished shifts only; the running shift is counted once it ends.
func TotalDrillingDepth(shifts []model.Shift) float64 {
	total := 0.0
	for _, s := range shifts {
		if !s.Active() {
			total += s.DrillingDepth
		}
	}
	return total
}

type EndShiftInput struct {
	DrillingDepth   float64
	FuelConsumption float64
	EndLocation     *int64
	ReportImage     *model.ReportImage
}

type ShiftManager struct {
	api   ShiftAPI
	cache cache.Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewShiftManager(client ShiftAPI, store cache.Store, log zerolog.Logger) *ShiftManager {
	return &ShiftManager{
		api:   client,
		cache: store,
		now:   time.Now,
		log:   log.With().Str("component", "shifts").Logger(),
	}
}

func (m *ShiftManager) State(ctx context.Context, machineID int64) (*ShiftState, error) {
	shifts, err := cache.Fetch(ctx, m.cache, m.log, shiftsKey(machineID), func(ctx context.Context) ([]model.Shift, error) {
		return m.api.ListShifts(ctx, machineID)
	})
	if err != nil {
		return nil, err
	}
	if n := countActive(shifts); n > 1 {
		m.log.Warn().Int64("machine_id", machineID).Int("active", n).Msg("more than one active shift, using the first")
	}
	return &ShiftState{
		Shifts:             shifts,
		Active:             ActiveShift(shifts),
		TotalDrillingDepth: TotalDrillingDepth(shifts),
	}, nil
}

// ActiveShiftID returns the id of the running shift, if any.
func (m *ShiftManager) ActiveShiftID(ctx context.Context, machineID int64) (*int64, error) {
	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if state.Active == nil {
		return nil, nil
	}
	id := state.Active.ID
	return &id, nil
}

// Start opens a shift for the machine with the given crew. Depth and fuel start at zero.
func (m *ShiftManager) Start(ctx context.Context, machineID int64, workers []int64, startLocation *int64) (*ShiftState, error) {
	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if state.HasActive() {
		return nil, ErrShiftAlreadyActive
	}

	if workers == nil {
		workers = []int64{}
	}
	shift, err := m.api.CreateShift(ctx, machineID, model.CreateShiftRequest{
		MachineID:     machineID,
		StartTime:     m.now().UTC(),
		Workers:       dedupe(workers),
		StartLocation: startLocation,
	})
	if err != nil {
		return nil, err
	}
	m.log.Info().Int64("machine_id", machineID).Int64("shift_id", shift.ID).Int("workers", len(workers)).Msg("shift started")
	return m.refresh(ctx, machineID)
}

// End closes the active shift. The report image is checked before anything is sent.
func (m *ShiftManager) End(ctx context.Context, machineID, shiftID int64, in EndShiftInput) (*ShiftState, error) {
	if in.ReportImage == nil || len(in.ReportImage.Data) == 0 {
		return nil, ErrReportImageRequired
	}
	if in.DrillingDepth < 0 || in.FuelConsumption < 0 {
		return nil, fmt.Errorf("%w: drilling depth and fuel consumption must not be negative", ErrInvalidInput)
	}

	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if state.Active == nil {
		return nil, ErrNoActiveShift
	}
	if state.Active.ID != shiftID {
		return nil, fmt.Errorf("%w: shift %d is not the active shift", ErrInvalidInput, shiftID)
	}

	if err := m.api.EndShift(ctx, shiftID, model.EndShiftRequest{
		EndTime:         m.now().UTC(),
		DrillingDepth:   in.DrillingDepth,
		FuelConsumption: in.FuelConsumption,
		EndLocation:     in.EndLocation,
		ReportImage:     in.ReportImage,
	}); err != nil {
		return nil, err
	}
	m.log.Info().Int64("machine_id", machineID).Int64("shift_id", shiftID).Float64("depth", in.DrillingDepth).Msg("shift ended")
	return m.refresh(ctx, machineID)
}

func (m *ShiftManager) AddWorker(ctx context.Context, machineID, workerID int64) (*ShiftState, error) {
	active, err := m.requireActive(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if err := m.api.AddShiftWorker(ctx, active.ID, workerID); err != nil {
		return nil, err
	}
	return m.refresh(ctx, machineID)
}

func (m *ShiftManager) RemoveWorker(ctx context.Context, machineID, workerID int64) (*ShiftState, error) {
	active, err := m.requireActive(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if err := m.api.RemoveShiftWorker(ctx, active.ID, workerID); err != nil {
		return nil, err
	}
	return m.refresh(ctx, machineID)
}

// Delete removes a shift of the machine, finished or not.
func (m *ShiftManager) Delete(ctx context.Context, machineID, shiftID int64) (*ShiftState, error) {
	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, s := range state.Shifts {
		if s.ID == shiftID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}
	if err := m.api.DeleteShift(ctx, shiftID); err != nil {
		return nil, notFound(err)
	}
	return m.refresh(ctx, machineID)
}

// Shift returns one shift of the machine.
func (m *ShiftManager) Shift(ctx context.Context, machineID, shiftID int64) (*model.Shift, error) {
	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	for i := range state.Shifts {
		if state.Shifts[i].ID == shiftID {
			s := state.Shifts[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *ShiftManager) requireActive(ctx context.Context, machineID int64) (*model.Shift, error) {
	state, err := m.State(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if state.Active == nil {
		return nil, ErrNoActiveShift
	}
	return state.Active, nil
}

func (m *ShiftManager) refresh(ctx context.Context, machineID int64) (*ShiftState, error) {
	if err := m.cache.Invalidate(ctx, shiftsKey(machineID)); err != nil {
		m.log.Warn().Err(err).Int64("machine_id", machineID).Msg("shift invalidation failed")
	}
	return m.State(ctx, machineID)
}

func shiftsKey(machineID int64) string {
	return cache.Key("shifts", machineID)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
