package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/model"
)

// DefaultInterval is the fixed poll cadence.
const DefaultInterval = 5 * time.Second

// LocationSource returns a machine's samples newest first.
type LocationSource interface {
	LatestLocations(ctx context.Context, machineID int64) ([]model.LocationSample, error)
}

type TokenReader interface {
	Token() string
}

// Poller keeps the freshest location sample of one machine.
//
// Ticks fire on a fixed schedule whether or not the previous fetch returned, so requests
// can overlap. Every tick carries a sequence number and a response is applied only when it
// is newer than the last applied one and tracking is still on.
type Poller struct {
	machineID int64
	source    LocationSource
	tokens    TokenReader
	interval  time.Duration
	onChange  func(machineID int64, seq uint64, sample *model.LocationSample)
	log       zerolog.Logger

	mu       sync.Mutex
	tracking bool
	cancel   context.CancelFunc
	done     chan struct{}
	loops    int
	issued   uint64
	applied  uint64
	sample   *model.LocationSample
	lastErr  error
	inflight sync.WaitGroup
}

func NewPoller(machineID int64, source LocationSource, tokens TokenReader, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		machineID: machineID,
		source:    source,
		tokens:    tokens,
		interval:  interval,
		log:       log.With().Str("component", "poller").Int64("machine_id", machineID).Logger(),
	}
}

// OnChange registers a callback invoked after each applied sample, nil when cleared. The
// callback runs outside the poller lock, so two callbacks can arrive out of order; seq
// tells the receiver which one is newer.
func (p *Poller) OnChange(fn func(machineID int64, seq uint64, sample *model.LocationSample)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Start begins tracking. Calling it while already tracking does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracking {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.tracking = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.loops++
	go p.run(ctx, p.done)
	p.log.Debug().Dur("interval", p.interval).Msg("tracking started")
}

// Stop cancels the timer. Responses still in flight are dropped when they arrive.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.tracking {
		p.mu.Unlock()
		return
	}
	p.tracking = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	p.log.Debug().Msg("tracking stopped")
}

func (p *Poller) Tracking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracking
}

// Sample returns the current sample or nil when none is known.
func (p *Poller) Sample() *model.LocationSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sample == nil {
		return nil
	}
	s := *p.sample
	return &s
}

// Err returns the error of the last applied tick.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Refresh fetches once outside the schedule and waits for the result.
func (p *Poller) Refresh(ctx context.Context) {
	if p.tokens.Token() == "" {
		return
	}
	p.fetch(ctx, p.nextSeq(), true)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if p.tokens.Token() == "" {
		return
	}
	seq := p.nextSeq()
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.fetch(ctx, seq, false)
	}()
}

func (p *Poller) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

func (p *Poller) fetch(ctx context.Context, seq uint64, manual bool) {
	tickID := uuid.NewString()
	samples, err := p.source.LatestLocations(ctx, p.machineID)

	p.mu.Lock()
	if !manual && (!p.tracking || ctx.Err() != nil) {
		p.mu.Unlock()
		p.log.Debug().Str("tick", tickID).Uint64("seq", seq).Msg("response after stop ignored")
		return
	}
	if seq <= p.applied {
		p.mu.Unlock()
		p.log.Debug().Str("tick", tickID).Uint64("seq", seq).Msg("stale response discarded")
		return
	}
	p.applied = seq
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		p.log.Warn().Err(err).Str("tick", tickID).Msg("location fetch failed")
		return
	}

	var next *model.LocationSample
	if len(samples) > 0 {
		s := samples[0]
		next = &s
	}
	p.lastErr = nil
	p.sample = next
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		if next == nil {
			cb(p.machineID, seq, nil)
		} else {
			s := *next
			cb(p.machineID, seq, &s)
		}
	}
}

// Reset stops tracking and forgets the sample and the last error. Responses issued before
// the reset are dropped when they arrive. It returns the last issued sequence.
func (p *Poller) Reset() uint64 {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sample = nil
	p.lastErr = nil
	p.applied = p.issued
	return p.issued
}

// Close stops tracking and waits for in-flight fetches to return.
func (p *Poller) Close() {
	p.Stop()
	p.inflight.Wait()
}
