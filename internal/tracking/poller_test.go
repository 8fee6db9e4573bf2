package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// scriptedSource answers each call with the next scripted response; once the script runs
// out it repeats the last one.
type scriptedSource struct {
	mu      sync.Mutex
	calls   int32
	script  [][]model.LocationSample
	gate    chan struct{}
	entered chan struct{}
}

func (s *scriptedSource) LatestLocations(ctx context.Context, machineID int64) ([]model.LocationSample, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return nil, nil
	}
	i := int(n) - 1
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	return s.script[i], nil
}

func (s *scriptedSource) count() int { return int(atomic.LoadInt32(&s.calls)) }

func sample(machineID int64, lat, lng float64) model.LocationSample {
	return model.LocationSample{MachineID: machineID, Latitude: lat, Longitude: lng, Timestamp: time.Now()}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartTwiceSchedulesOneTimer(t *testing.T) {
	src := &scriptedSource{script: [][]model.LocationSample{{sample(1, 38.9, 37.8)}}}
	p := NewPoller(1, src, staticToken("t"), time.Hour, zerolog.Nop())

	p.Start()
	p.Start()
	defer p.Close()

	waitFor(t, func() bool { return p.Sample() != nil })
	time.Sleep(30 * time.Millisecond)

	if got := src.count(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	p.mu.Lock()
	loops := p.loops
	p.mu.Unlock()
	if loops != 1 {
		t.Errorf("timers = %d, want 1", loops)
	}
}

func TestTicksRepeatOnInterval(t *testing.T) {
	src := &scriptedSource{script: [][]model.LocationSample{{sample(1, 1, 1)}}}
	p := NewPoller(1, src, staticToken("t"), 10*time.Millisecond, zerolog.Nop())
	p.Start()
	defer p.Close()

	waitFor(t, func() bool { return src.count() >= 3 })
}

func TestResponseAfterStopIgnored(t *testing.T) {
	src := &scriptedSource{
		script:  [][]model.LocationSample{{sample(1, 38.9, 37.8)}},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	p := NewPoller(1, src, staticToken("t"), time.Hour, zerolog.Nop())
	p.Start()
	<-src.entered

	p.Stop()
	close(src.gate)
	p.Close()

	if p.Sample() != nil {
		t.Errorf("sample = %+v, want nil after stop", p.Sample())
	}
	if p.Tracking() {
		t.Error("still tracking")
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	older := sample(1, 10, 10)
	newer := sample(1, 20, 20)
	// The newer request resolves first.
	src := &scriptedSource{script: [][]model.LocationSample{{newer}, {older}}}
	p := NewPoller(1, src, staticToken("t"), time.Hour, zerolog.Nop())

	first := p.nextSeq()
	second := p.nextSeq()
	p.fetch(context.Background(), second, true)
	p.fetch(context.Background(), first, true)

	got := p.Sample()
	if got == nil || got.Latitude != 20 {
		t.Fatalf("sample = %+v, want the newer one", got)
	}
}

func TestEmptyResponseClearsSample(t *testing.T) {
	src := &scriptedSource{script: [][]model.LocationSample{{sample(1, 38.9, 37.8)}, {}}}
	p := NewPoller(1, src, staticToken("t"), time.Hour, zerolog.Nop())

	var changes []*model.LocationSample
	p.OnChange(func(_ int64, _ uint64, s *model.LocationSample) { changes = append(changes, s) })

	p.Refresh(context.Background())
	if p.Sample() == nil {
		t.Fatal("expected a sample")
	}
	p.Refresh(context.Background())
	if p.Sample() != nil {
		t.Errorf("sample = %+v, want nil", p.Sample())
	}
	if len(changes) != 2 || changes[1] != nil {
		t.Errorf("changes = %v", changes)
	}
}

func TestNoTokenSkipsTick(t *testing.T) {
	src := &scriptedSource{script: [][]model.LocationSample{{sample(1, 1, 1)}}}
	p := NewPoller(1, src, staticToken(""), 5*time.Millisecond, zerolog.Nop())

	p.Refresh(context.Background())
	p.Start()
	time.Sleep(40 * time.Millisecond)
	p.Close()

	if got := src.count(); got != 0 {
		t.Errorf("fetches = %d, want 0", got)
	}
	if p.Err() != nil {
		t.Errorf("err = %v, want nil", p.Err())
	}
}
