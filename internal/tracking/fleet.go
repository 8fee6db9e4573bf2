package tracking

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/model"
)

var (
	ErrUnknownMachine    = errors.New("unknown machine")
	ErrNoMarker          = errors.New("machine has no marker")
	ErrNotPlacing        = errors.New("location selection is not active")
	ErrNoPendingLocation = errors.New("no pending location")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// WaypointCreator persists a confirmed manual pin.
type WaypointCreator interface {
	CreateWaypoint(ctx context.Context, machineID int64, lat, lng float64) (*model.LocationRecord, error)
}

// Placement is a coordinate picked on the map and waiting for confirmation.
type Placement struct {
	MachineID int64             `json:"machine_id"`
	Pending   *model.Coordinate `json:"pending"`
}

// Fleet fans one Poller out per machine and reconciles their samples into map markers
// keyed by machine id.
type Fleet struct {
	source   LocationSource
	tokens   TokenReader
	interval time.Duration
	log      zerolog.Logger

	mu        sync.RWMutex
	order     []int64
	machines  map[int64]model.Machine
	pollers   map[int64]*Poller
	samples   map[int64]model.LocationSample
	applied   map[int64]uint64
	workers   map[int64][]WorkerBadge
	tracking  bool
	selected  int64
	placement *Placement
}

func NewFleet(source LocationSource, tokens TokenReader, interval time.Duration, log zerolog.Logger) *Fleet {
	return &Fleet{
		source:   source,
		tokens:   tokens,
		interval: interval,
		log:      log.With().Str("component", "fleet").Logger(),
		machines: make(map[int64]model.Machine),
		pollers:  make(map[int64]*Poller),
		samples:  make(map[int64]model.LocationSample),
		applied:  make(map[int64]uint64),
		workers:  make(map[int64][]WorkerBadge),
	}
}

// SetMachines reconciles the poller set with the machine list. New machines get a poller
// (started when the fleet is tracking); machines that disappeared lose poller and marker.
func (f *Fleet) SetMachines(machines []model.Machine) {
	f.mu.Lock()
	seen := make(map[int64]bool, len(machines))
	order := make([]int64, 0, len(machines))
	var started []*Poller
	for _, m := range machines {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		order = append(order, m.ID)
		f.machines[m.ID] = m
		if _, ok := f.pollers[m.ID]; ok {
			continue
		}
		p := NewPoller(m.ID, f.source, f.tokens, f.interval, f.log)
		p.OnChange(f.apply)
		f.pollers[m.ID] = p
		if f.tracking {
			started = append(started, p)
		}
	}

	var removed []*Poller
	for id, p := range f.pollers {
		if seen[id] {
			continue
		}
		removed = append(removed, p)
		delete(f.pollers, id)
		delete(f.machines, id)
		delete(f.samples, id)
		delete(f.applied, id)
		if f.selected == id {
			f.selected = 0
		}
		if f.placement != nil && f.placement.MachineID == id {
			f.placement = nil
		}
	}
	f.order = order
	f.mu.Unlock()

	for _, p := range started {
		p.Start()
	}
	for _, p := range removed {
		p.Stop()
	}
}

// apply stores a poller result unless a newer one for the same machine already landed.
func (f *Fleet) apply(machineID int64, seq uint64, sample *model.LocationSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.machines[machineID]; !ok {
		return
	}
	if seq <= f.applied[machineID] {
		return
	}
	f.applied[machineID] = seq
	if sample == nil {
		delete(f.samples, machineID)
		return
	}
	f.samples[machineID] = *sample
}

// StartTracking starts every machine poller.
func (f *Fleet) StartTracking() {
	f.mu.Lock()
	f.tracking = true
	pollers := f.pollerList()
	f.mu.Unlock()
	for _, p := range pollers {
		p.Start()
	}
}

func (f *Fleet) StopTracking() {
	f.mu.Lock()
	f.tracking = false
	pollers := f.pollerList()
	f.mu.Unlock()
	for _, p := range pollers {
		p.Stop()
	}
}

// Reset returns the map to its signed-out state: pollers stop and lose their samples, and
// markers, selection, placement and crews are cleared. Machines and pollers stay registered.
func (f *Fleet) Reset() {
	f.mu.Lock()
	f.tracking = false
	pollers := f.pollerList()
	f.mu.Unlock()

	floors := make(map[int64]uint64, len(pollers))
	for _, p := range pollers {
		floors[p.machineID] = p.Reset()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = make(map[int64]model.LocationSample)
	f.workers = make(map[int64][]WorkerBadge)
	f.selected = 0
	f.placement = nil
	for id, seq := range floors {
		if seq > f.applied[id] {
			f.applied[id] = seq
		}
	}
	f.log.Debug().Int("pollers", len(pollers)).Msg("fleet reset")
}

func (f *Fleet) Tracking() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tracking
}

// Poller returns the poller of one machine for per-machine tracking control.
func (f *Fleet) Poller(machineID int64) (*Poller, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.pollers[machineID]
	if !ok {
		return nil, ErrUnknownMachine
	}
	return p, nil
}

// Close stops all pollers and waits for in-flight fetches.
func (f *Fleet) Close() {
	f.mu.Lock()
	f.tracking = false
	pollers := f.pollerList()
	f.mu.Unlock()
	for _, p := range pollers {
		p.Close()
	}
}

func (f *Fleet) pollerList() []*Poller {
	out := make([]*Poller, 0, len(f.pollers))
	for _, id := range f.order {
		if p, ok := f.pollers[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SetWorkers joins active assignments with users so markers can list their crew.
func (f *Fleet) SetWorkers(assignments []model.WorkerAssignment, users []model.User) {
	byID := make(map[int64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	workers := make(map[int64][]WorkerBadge)
	for _, a := range assignments {
		if !a.IsActive {
			continue
		}
		u, ok := byID[a.WorkerID]
		if !ok {
			continue
		}
		workers[a.MachineID] = append(workers[a.MachineID], WorkerBadge{ID: u.ID, Name: u.Name, Surname: u.Surname, Role: u.Role})
	}
	f.mu.Lock()
	f.workers = workers
	f.mu.Unlock()
}

// Markers returns one marker per machine with a known sample, in machine list order.
// Machines without a sample are left off the map.
func (f *Fleet) Markers() []Marker {
	f.mu.RLock()
	defer f.mu.RUnlock()
	markers := make([]Marker, 0, len(f.samples))
	for _, id := range f.order {
		sample, ok := f.samples[id]
		if !ok {
			continue
		}
		m := f.machines[id]
		color := StatusColor(m.Status)
		if f.selected == id {
			color = ColorSelected
		}
		workers := f.workers[id]
		if workers == nil {
			workers = []WorkerBadge{}
		}
		markers = append(markers, Marker{
			MachineID:   id,
			Name:        m.Name,
			Status:      m.Status,
			StatusLabel: m.Status.Label(),
			Color:       color,
			Latitude:    sample.Latitude,
			Longitude:   sample.Longitude,
			Heading:     sample.Heading,
			Accuracy:    sample.Accuracy,
			Timestamp:   sample.Timestamp,
			Selected:    f.selected == id,
			Workers:     workers,
		})
	}
	return markers
}

// Select emphasises an existing marker. It changes nothing else.
func (f *Fleet) Select(machineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.samples[machineID]; !ok {
		return ErrNoMarker
	}
	f.selected = machineID
	return nil
}

func (f *Fleet) Selected() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selected
}

// BeginPlacement switches the map into location selection for a new waypoint.
func (f *Fleet) BeginPlacement(machineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.machines[machineID]; !ok {
		return ErrUnknownMachine
	}
	f.placement = &Placement{MachineID: machineID}
	return nil
}

// Place stores the clicked coordinate as pending. A new click replaces the previous one.
func (f *Fleet) Place(machineID int64, lat, lng float64) error {
	if !validCoordinate(lat, lng) {
		return ErrInvalidCoordinate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placement == nil || f.placement.MachineID != machineID {
		return ErrNotPlacing
	}
	f.placement.Pending = &model.Coordinate{Lat: lat, Lng: lng}
	return nil
}

func (f *Fleet) Placement() *Placement {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.placement == nil {
		return nil
	}
	out := &Placement{MachineID: f.placement.MachineID}
	if f.placement.Pending != nil {
		c := *f.placement.Pending
		out.Pending = &c
	}
	return out
}

// ConfirmPlacement persists the pending coordinate. On failure the pending pair is kept so
// the operator can retry.
func (f *Fleet) ConfirmPlacement(ctx context.Context, machineID int64, creator WaypointCreator) (*model.LocationRecord, error) {
	f.mu.RLock()
	var pending *model.Coordinate
	if f.placement != nil && f.placement.MachineID == machineID && f.placement.Pending != nil {
		c := *f.placement.Pending
		pending = &c
	}
	f.mu.RUnlock()
	if pending == nil {
		return nil, ErrNoPendingLocation
	}

	record, err := creator.CreateWaypoint(ctx, machineID, pending.Lat, pending.Lng)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.placement != nil && f.placement.MachineID == machineID {
		f.placement = nil
	}
	f.mu.Unlock()
	return record, nil
}

// CancelPlacement discards the pending coordinate and leaves selection mode.
func (f *Fleet) CancelPlacement(machineID int64) {
	f.mu.Lock()
	if f.placement != nil && f.placement.MachineID == machineID {
		f.placement = nil
	}
	f.mu.Unlock()
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
