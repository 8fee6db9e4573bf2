package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

type MachineAPI interface {
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, machineID int64) (*model.Machine, error)
	UpdateMachineLocation(ctx context.Context, machineID int64, update model.LocationUpdate) (*model.LocationSample, error)
}

type MachineService struct {
	api        MachineAPI
	cache      cache.Store
	retries    int
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewMachineService(client MachineAPI, store cache.Store, retries int, retryDelay time.Duration, log zerolog.Logger) *MachineService {
	return &MachineService{
		api:        client,
		cache:      store,
		retries:    retries,
		retryDelay: retryDelay,
		log:        log.With().Str("component", "machines").Logger(),
	}
}

// List returns all machines. Transient failures are retried a bounded number of times
// with a fixed delay; nothing else in the dashboard retries.
func (s *MachineService) List(ctx context.Context) ([]model.Machine, error) {
	return cache.Fetch(ctx, s.cache, s.log, "machines", s.listWithRetry)
}

func (s *MachineService) listWithRetry(ctx context.Context) ([]model.Machine, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying machine list")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
		machines, err := s.api.ListMachines(ctx)
		if err == nil {
			return machines, nil
		}
		if !api.Transient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *MachineService) Get(ctx context.Context, machineID int64) (*model.Machine, error) {
	machine, err := cache.Fetch(ctx, s.cache, s.log, cache.Key("machine", machineID), func(ctx context.Context) (model.Machine, error) {
		m, err := s.api.GetMachine(ctx, machineID)
		if err != nil {
			return model.Machine{}, err
		}
		return *m, nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &machine, nil
}

// UpdateLocation reports a manually captured device position for the machine.
func (s *MachineService) UpdateLocation(ctx context.Context, machineID int64, update model.LocationUpdate) (*model.LocationSample, error) {
	if update.Timestamp == "" {
		update.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if err := model.Validate(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	sample, err := s.api.UpdateMachineLocation(ctx, machineID, update)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, historyKey(machineID)); err != nil {
		s.log.Warn().Err(err).Int64("machine_id", machineID).Msg("history invalidation failed")
	}
	return sample, nil
}
