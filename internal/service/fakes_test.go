package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

// fakeRemote is an in-memory stand-in for the fleet API that counts every call.
type fakeRemote struct {
	mu     sync.Mutex
	calls  map[string]int
	nextID int64

	machines   []model.Machine
	machineErr []error
	shifts     map[int64][]model.Shift
	fuel       map[int64]*model.FuelSummary
	items      []model.InventoryItem

	lastWaypoint model.WaypointRequest
	lastFuel     model.FuelInput
	lastEnd      model.EndShiftRequest
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		calls:  make(map[string]int),
		nextID: 100,
		shifts: make(map[int64][]model.Shift),
		fuel:   make(map[int64]*model.FuelSummary),
	}
}

func (f *fakeRemote) hit(name string) {
	f.calls[name]++
}

func (f *fakeRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRemote) ListMachines(context.Context) ([]model.Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListMachines")
	if len(f.machineErr) > 0 {
		err := f.machineErr[0]
		f.machineErr = f.machineErr[1:]
		return nil, err
	}
	return f.machines, nil
}

func (f *fakeRemote) GetMachine(_ context.Context, id int64) (*model.Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("GetMachine")
	for _, m := range f.machines {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, &api.APIError{StatusCode: http.StatusNotFound}
}

func (f *fakeRemote) UpdateMachineLocation(_ context.Context, id int64, u model.LocationUpdate) (*model.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateMachineLocation")
	return &model.LocationSample{MachineID: id, Latitude: u.Latitude, Longitude: u.Longitude}, nil
}

func (f *fakeRemote) LocationHistory(context.Context, int64) ([]model.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("LocationHistory")
	return nil, nil
}

func (f *fakeRemote) CreateHistoryPoint(_ context.Context, machineID int64, req model.WaypointRequest) (*model.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateHistoryPoint")
	f.lastWaypoint = req
	return &model.LocationRecord{LocationSample: model.LocationSample{MachineID: machineID, Latitude: req.Latitude, Longitude: req.Longitude}}, nil
}

func (f *fakeRemote) DeleteHistoryPoint(context.Context, int64, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteHistoryPoint")
	return nil
}

func (f *fakeRemote) ListShifts(_ context.Context, machineID int64) ([]model.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListShifts")
	out := make([]model.Shift, len(f.shifts[machineID]))
	copy(out, f.shifts[machineID])
	return out, nil
}

func (f *fakeRemote) CreateShift(_ context.Context, machineID int64, req model.CreateShiftRequest) (*model.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateShift")
	f.nextID++
	s := model.Shift{
		ID:              f.nextID,
		MachineID:       machineID,
		Workers:         append([]int64{}, req.Workers...),
		StartTime:       req.StartTime,
		DrillingDepth:   req.DrillingDepth,
		FuelConsumption: req.FuelConsumption,
	}
	f.shifts[machineID] = append([]model.Shift{s}, f.shifts[machineID]...)
	return &s, nil
}

func (f *fakeRemote) EndShift(_ context.Context, shiftID int64, req model.EndShiftRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("EndShift")
	f.lastEnd = req
	return f.updateShift(shiftID, func(s *model.Shift) {
		end := req.EndTime
		s.EndTime = &end
		s.DrillingDepth = req.DrillingDepth
		s.FuelConsumption = req.FuelConsumption
	})
}

func (f *fakeRemote) AddShiftWorker(_ context.Context, shiftID, workerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("AddShiftWorker")
	return f.updateShift(shiftID, func(s *model.Shift) { s.Workers = append(s.Workers, workerID) })
}

func (f *fakeRemote) RemoveShiftWorker(_ context.Context, shiftID, workerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("RemoveShiftWorker")
	return f.updateShift(shiftID, func(s *model.Shift) {
		kept := s.Workers[:0]
		for _, id := range s.Workers {
			if id != workerID {
				kept = append(kept, id)
			}
		}
		s.Workers = kept
	})
}

func (f *fakeRemote) DeleteShift(_ context.Context, shiftID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteShift")
	for machineID, list := range f.shifts {
		for i, s := range list {
			if s.ID == shiftID {
				f.shifts[machineID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return &api.APIError{StatusCode: http.StatusNotFound}
}

func (f *fakeRemote) updateShift(shiftID int64, fn func(*model.Shift)) error {
	for machineID := range f.shifts {
		for i := range f.shifts[machineID] {
			if f.shifts[machineID][i].ID == shiftID {
				fn(&f.shifts[machineID][i])
				return nil
			}
		}
	}
	return &api.APIError{StatusCode: http.StatusNotFound, Message: "shift not found"}
}

func (f *fakeRemote) FuelSummary(_ context.Context, machineID int64) (*model.FuelSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("FuelSummary")
	if s, ok := f.fuel[machineID]; ok {
		c := *s
		return &c, nil
	}
	return &model.FuelSummary{History: []model.FuelRecord{}}, nil
}

func (f *fakeRemote) CreateFuel(_ context.Context, machineID int64, in model.FuelInput) (*model.FuelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateFuel")
	f.lastFuel = in
	f.nextID++
	return &model.FuelRecord{ID: f.nextID, MachineID: machineID, ShiftID: in.ShiftID, Amount: in.Amount, Timestamp: time.Now()}, nil
}

func (f *fakeRemote) DeleteFuel(context.Context, int64, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteFuel")
	return nil
}

func (f *fakeRemote) ListInventory(context.Context) ([]model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListInventory")
	return f.items, nil
}

func (f *fakeRemote) CreateInventoryItem(_ context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateInventoryItem")
	return &model.InventoryItem{Name: *in.Name}, nil
}

func (f *fakeRemote) UpdateInventoryItem(_ context.Context, id int64, _ model.InventoryItemInput) (*model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateInventoryItem")
	return &model.InventoryItem{ID: id}, nil
}

func (f *fakeRemote) DeleteInventoryItem(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteInventoryItem")
	return nil
}

func (f *fakeRemote) AddStock(_ context.Context, id int64, c model.StockChange) (*model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("AddStock")
	return &model.InventoryItem{ID: id, Quantity: c.Quantity}, nil
}

func (f *fakeRemote) RemoveStock(_ context.Context, id int64, _ model.StockChange) (*model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("RemoveStock")
	return &model.InventoryItem{ID: id}, nil
}

func (f *fakeRemote) ListTransactions(context.Context, int64) ([]model.InventoryTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListTransactions")
	return nil, nil
}

// brokenInvalidation is a cache whose Invalidate always fails.
type brokenInvalidation struct {
	cache.Store
}

func (brokenInvalidation) Invalidate(context.Context, string) error {
	return errors.New("cache unavailable")
}
