package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

type FuelAPI interface {
	FuelSummary(ctx context.Context, machineID int64) (*model.FuelSummary, error)
	CreateFuel(ctx context.Context, machineID int64, in model.FuelInput) (*model.FuelRecord, error)
	DeleteFuel(ctx context.Context, machineID, fuelID int64) error
}

// ActiveShiftFinder tags new fuel records with the running shift.
type ActiveShiftFinder interface {
	ActiveShiftID(ctx context.Context, machineID int64) (*int64, error)
}

// FuelLedger is the append-only fuel record list of a machine. The total comes from the
// API as is.
type FuelLedger struct {
	api    FuelAPI
	shifts ActiveShiftFinder
	cache  cache.Store
	now    func() time.Time
	log    zerolog.Logger
}

func NewFuelLedger(client FuelAPI, shifts ActiveShiftFinder, store cache.Store, log zerolog.Logger) *FuelLedger {
	return &FuelLedger{
		api:    client,
		shifts: shifts,
		cache:  store,
		now:    time.Now,
		log:    log.With().Str("component", "fuel").Logger(),
	}
}

func (l *FuelLedger) Summary(ctx context.Context, machineID int64) (*model.FuelSummary, error) {
	summary, err := cache.Fetch(ctx, l.cache, l.log, fuelKey(machineID), func(ctx context.Context) (model.FuelSummary, error) {
		s, err := l.api.FuelSummary(ctx, machineID)
		if err != nil {
			return model.FuelSummary{}, err
		}
		return *s, nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Add records a refuel. Without an explicit shift the record is tagged with the active one.
func (l *FuelLedger) Add(ctx context.Context, machineID int64, in model.FuelInput) (*model.FuelRecord, error) {
	if err := model.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	in.MachineID = machineID
	if in.Timestamp == "" {
		in.Timestamp = l.now().UTC().Format(time.RFC3339)
	}
	if in.ShiftID == nil && l.shifts != nil {
		shiftID, err := l.shifts.ActiveShiftID(ctx, machineID)
		if err != nil {
			l.log.Warn().Err(err).Int64("machine_id", machineID).Msg("could not resolve active shift for fuel record")
		}
		in.ShiftID = shiftID
	}

	record, err := l.api.CreateFuel(ctx, machineID, in)
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx, machineID)
	return record, nil
}

func (l *FuelLedger) Delete(ctx context.Context, machineID, fuelID int64) error {
	if err := l.api.DeleteFuel(ctx, machineID, fuelID); err != nil {
		return notFound(err)
	}
	l.invalidate(ctx, machineID)
	return nil
}

// ForShift returns the fuel records tagged with one shift.
func (l *FuelLedger) ForShift(ctx context.Context, machineID, shiftID int64) ([]model.FuelRecord, error) {
	summary, err := l.Summary(ctx, machineID)
	if err != nil {
		return nil, err
	}
	out := make([]model.FuelRecord, 0)
	for _, r := range summary.History {
		if r.ShiftID != nil && *r.ShiftID == shiftID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *FuelLedger) invalidate(ctx context.Context, machineID int64) {
	if err := l.cache.Invalidate(ctx, fuelKey(machineID)); err != nil {
		l.log.Warn().Err(err).Int64("machine_id", machineID).Msg("fuel invalidation failed")
	}
}

func fuelKey(machineID int64) string {
	return cache.Key("fuel", machineID)
}
