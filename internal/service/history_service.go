package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/tracking"
)

type HistoryAPI interface {
	LocationHistory(ctx context.Context, machineID int64) ([]model.LocationRecord, error)
	CreateHistoryPoint(ctx context.Context, machineID int64, req model.WaypointRequest) (*model.LocationRecord, error)
	DeleteHistoryPoint(ctx context.Context, machineID, locationID int64) error
}

// HistoryService serves a machine's location history on demand. It is never polled.
type HistoryService struct {
	api           HistoryAPI
	cache         cache.Store
	defaultCenter model.Coordinate
	log           zerolog.Logger
}

func NewHistoryService(client HistoryAPI, store cache.Store, defaultCenter model.Coordinate, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		api:           client,
		cache:         store,
		defaultCenter: defaultCenter,
		log:           log.With().Str("component", "history").Logger(),
	}
}

func (s *HistoryService) List(ctx context.Context, machineID int64) ([]model.LocationRecord, error) {
	return cache.Fetch(ctx, s.cache, s.log, historyKey(machineID), func(ctx context.Context) ([]model.LocationRecord, error) {
		return s.api.LocationHistory(ctx, machineID)
	})
}

// DefaultCenter is where the map opens when there is nothing to frame.
func (s *HistoryService) DefaultCenter() model.Coordinate {
	return s.defaultCenter
}

// Bounds frames the machine's history for the initial map view.
func (s *HistoryService) Bounds(ctx context.Context, machineID int64) (model.MapBounds, error) {
	records, err := s.List(ctx, machineID)
	if err != nil {
		return model.MapBounds{}, err
	}
	return tracking.HistoryBounds(records, s.defaultCenter), nil
}

// CreateWaypoint stores a manually placed pin. Coordinates are rounded to 6 decimals and
// the sensor fields are zero, since a waypoint is not a sensor sample.
func (s *HistoryService) CreateWaypoint(ctx context.Context, machineID int64, lat, lng float64) (*model.LocationRecord, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinate out of range", ErrInvalidInput)
	}
	req := model.WaypointRequest{
		Latitude:  round6(lat),
		Longitude: round6(lng),
	}
	record, err := s.api.CreateHistoryPoint(ctx, machineID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, machineID)
	s.log.Info().Int64("machine_id", machineID).Float64("lat", req.Latitude).Float64("lng", req.Longitude).Msg("waypoint created")
	return record, nil
}

func (s *HistoryService) Delete(ctx context.Context, machineID, locationID int64) error {
	if err := s.api.DeleteHistoryPoint(ctx, machineID, locationID); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx, machineID)
	return nil
}

func (s *HistoryService) invalidate(ctx context.Context, machineID int64) {
	if err := s.cache.Invalidate(ctx, historyKey(machineID)); err != nil {
		s.log.Warn().Err(err).Int64("machine_id", machineID).Msg("history invalidation failed")
	}
}

func historyKey(machineID int64) string {
	return cache.Key("history", machineID)
}
