package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

func TestWaypointRoundedWithZeroSensorFields(t *testing.T) {
	remote := newFakeRemote()
	h := NewHistoryService(remote, cache.NewMemoryStore(time.Minute), model.Coordinate{}, zerolog.Nop())

	if _, err := h.CreateWaypoint(context.Background(), 1, 38.99268812345, 37.84578690001); err != nil {
		t.Fatalf("CreateWaypoint: %v", err)
	}
	want := model.WaypointRequest{Latitude: 38.992688, Longitude: 37.845787}
	if remote.lastWaypoint != want {
		t.Errorf("request = %+v, want %+v", remote.lastWaypoint, want)
	}
}

func TestWaypointMutationsRefetchHistory(t *testing.T) {
	remote := newFakeRemote()
	h := NewHistoryService(remote, cache.NewMemoryStore(time.Minute), model.Coordinate{}, zerolog.Nop())
	ctx := context.Background()

	_, _ = h.List(ctx, 1)
	_, _ = h.List(ctx, 1)
	if n := remote.count("LocationHistory"); n != 1 {
		t.Fatalf("history fetches = %d, want 1 (cached)", n)
	}
	_, _ = h.CreateWaypoint(ctx, 1, 38, 37)
	_, _ = h.List(ctx, 1)
	_ = h.Delete(ctx, 1, 3)
	_, _ = h.List(ctx, 1)
	if n := remote.count("LocationHistory"); n != 3 {
		t.Errorf("history fetches = %d, want 3", n)
	}
}

func TestWaypointOutOfRange(t *testing.T) {
	remote := newFakeRemote()
	h := NewHistoryService(remote, cache.NewMemoryStore(time.Minute), model.Coordinate{}, zerolog.Nop())
	if _, err := h.CreateWaypoint(context.Background(), 1, 95, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	if remote.total() != 0 {
		t.Error("request sent for invalid coordinate")
	}
}

func TestUpdateLocationLogsFailedInvalidation(t *testing.T) {
	var logs bytes.Buffer
	store := brokenInvalidation{Store: cache.NewMemoryStore(time.Minute)}
	s := NewMachineService(newFakeRemote(), store, 0, 0, zerolog.New(&logs))

	sample, err := s.UpdateLocation(context.Background(), 4, model.LocationUpdate{Latitude: 38.99, Longitude: 37.84})
	if err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if sample.MachineID != 4 {
		t.Errorf("sample = %+v", sample)
	}
	out := logs.String()
	if !strings.Contains(out, "history invalidation failed") || !strings.Contains(out, `"machine_id":4`) {
		t.Errorf("log = %q", out)
	}
}

func TestMachineListRetriesTransientFailures(t *testing.T) {
	remote := newFakeRemote()
	remote.machines = []model.Machine{{ID: 1}}
	remote.machineErr = []error{
		&api.APIError{StatusCode: http.StatusServiceUnavailable},
		api.ErrNetwork,
	}
	s := NewMachineService(remote, cache.NewMemoryStore(time.Minute), 3, time.Millisecond, zerolog.Nop())

	machines, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(machines) != 1 || remote.count("ListMachines") != 3 {
		t.Errorf("machines=%d calls=%d", len(machines), remote.count("ListMachines"))
	}
}

func TestMachineListGivesUpAfterRetries(t *testing.T) {
	remote := newFakeRemote()
	for i := 0; i < 5; i++ {
		remote.machineErr = append(remote.machineErr, &api.APIError{StatusCode: http.StatusBadGateway})
	}
	s := NewMachineService(remote, cache.NewMemoryStore(time.Minute), 2, time.Millisecond, zerolog.Nop())

	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := remote.count("ListMachines"); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestMachineListDoesNotRetryClientErrors(t *testing.T) {
	remote := newFakeRemote()
	remote.machineErr = []error{&api.APIError{StatusCode: http.StatusForbidden}}
	s := NewMachineService(remote, cache.NewMemoryStore(time.Minute), 3, time.Millisecond, zerolog.Nop())

	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := remote.count("ListMachines"); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestMachineGetNotFound(t *testing.T) {
	s := NewMachineService(newFakeRemote(), cache.NewMemoryStore(time.Minute), 0, 0, zerolog.Nop())
	if _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestFuelTaggedWithActiveShift(t *testing.T) {
	remote := newFakeRemote()
	remote.shifts[1] = []model.Shift{{ID: 12, MachineID: 1}}
	store := cache.NewMemoryStore(time.Minute)
	shifts := NewShiftManager(remote, store, zerolog.Nop())
	fuel := NewFuelLedger(remote, shifts, store, zerolog.Nop())

	rec, err := fuel.Add(context.Background(), 1, model.FuelInput{Amount: 50, Notes: "depo"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.ShiftID == nil || *rec.ShiftID != 12 {
		t.Errorf("shift = %v, want 12", rec.ShiftID)
	}
	if remote.lastFuel.MachineID != 1 || remote.lastFuel.Timestamp == "" {
		t.Errorf("request = %+v", remote.lastFuel)
	}
}

func TestFuelRejectsNegativeAmount(t *testing.T) {
	remote := newFakeRemote()
	fuel := NewFuelLedger(remote, nil, cache.NewMemoryStore(time.Minute), zerolog.Nop())
	if _, err := fuel.Add(context.Background(), 1, model.FuelInput{Amount: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	if remote.total() != 0 {
		t.Error("request sent")
	}
}

func TestFuelTotalTrustedFromServer(t *testing.T) {
	remote := newFakeRemote()
	remote.fuel[1] = &model.FuelSummary{
		TotalConsumption: 999,
		History:          []model.FuelRecord{{Amount: 10}, {Amount: 20}},
	}
	fuel := NewFuelLedger(remote, nil, cache.NewMemoryStore(time.Minute), zerolog.Nop())

	s, err := fuel.Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.TotalConsumption != 999 {
		t.Errorf("total = %v, want server value 999", s.TotalConsumption)
	}
}

func TestInventoryCriticalBoundary(t *testing.T) {
	remote := newFakeRemote()
	remote.items = []model.InventoryItem{
		{ID: 1, Name: "matkap ucu", Quantity: 5, MinQuantity: 5},
		{ID: 2, Name: "filtre", Quantity: 6, MinQuantity: 5},
		{ID: 3, Name: "hortum", Quantity: 1, MinQuantity: 4},
	}
	l := NewInventoryLedger(remote, cache.NewMemoryStore(time.Minute), zerolog.Nop())

	items, err := l.Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	want := map[int64]bool{1: true, 2: false, 3: true}
	for _, it := range items {
		if it.Critical != want[it.ID] {
			t.Errorf("item %d critical = %v, want %v", it.ID, it.Critical, want[it.ID])
		}
	}
	critical, _ := l.CriticalItems(context.Background())
	if len(critical) != 2 {
		t.Errorf("critical = %d, want 2", len(critical))
	}
}

func TestStockChangeGoesThroughLedger(t *testing.T) {
	remote := newFakeRemote()
	l := NewInventoryLedger(remote, cache.NewMemoryStore(time.Minute), zerolog.Nop())
	ctx := context.Background()

	if _, err := l.AddStock(ctx, 1, model.StockChange{Quantity: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero quantity err = %v", err)
	}
	if _, err := l.AddStock(ctx, 1, model.StockChange{Quantity: 3, Notes: "sevkiyat"}); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if _, err := l.RemoveStock(ctx, 1, model.StockChange{Quantity: 1}); err != nil {
		t.Fatalf("RemoveStock: %v", err)
	}
	if remote.count("AddStock") != 1 || remote.count("RemoveStock") != 1 || remote.count("UpdateInventoryItem") != 0 {
		t.Errorf("calls = %v", remote.calls)
	}
}

func TestWorkerNameFallback(t *testing.T) {
	names := map[int64]string{7: "Ali Kaya"}
	if got := WorkerName(names, 7); got != "Ali Kaya" {
		t.Errorf("got %q", got)
	}
	if got := WorkerName(names, 8); got != UnknownWorker {
		t.Errorf("got %q", got)
	}
	if !CanManageWorkers(&model.User{Role: model.RoleEngineer}) || CanManageWorkers(&model.User{Role: model.RoleWorker}) {
		t.Error("role gate wrong")
	}
}
