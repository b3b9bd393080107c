// Package poller drives the sampling pipeline: aggregate a snapshot, append
// it to the history, evaluate thresholds and publish the result. Cycles
// never overlap; the next one starts a refresh interval after the previous
// one finished.
package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dicklesworthstone/healthmon/internal/config"
	"github.com/Dicklesworthstone/healthmon/internal/history"
	"github.com/Dicklesworthstone/healthmon/internal/model"
	"github.com/Dicklesworthstone/healthmon/internal/threshold"
)

// Aggregator produces one snapshot per call. Implementations are expected
// to isolate their own collector failures.
type Aggregator interface {
	Aggregate(ctx context.Context) model.Snapshot
}

// Configurable is implemented by aggregators that honour settings reloads.
type Configurable interface {
	Configure(config.Settings)
}

// Subscriber receives every published update on the poller goroutine. It
// must return quickly.
type Subscriber func(model.Update)

// State is the poller's position in its cycle.
type State int

const (
	StateIdle State = iota
	StatePolling
	StatePublishing
	StateWaiting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StatePublishing:
		return "publishing"
	case StateWaiting:
		return "waiting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DefaultStreamBuffer is the channel capacity used by Stream when the
// caller passes zero.
const DefaultStreamBuffer = 4

// Poller owns the snapshot, history and warning state. It is the only
// writer; readers get copies through subscriptions.
type Poller struct {
	agg     Aggregator
	history *history.Buffer
	logger  *slog.Logger

	mu         sync.RWMutex
	interval   time.Duration
	thresholds config.Thresholds
	state      State
	subs       []Subscriber
	cycles     uint64
	failures   uint64

	// after is time.After, overridable for tests.
	after func(time.Duration) <-chan time.Time
}

// New creates an idle poller for agg using the interval and thresholds in
// cfg. If logger is nil, a no-op logger is used.
func New(agg Aggregator, cfg config.Settings, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{
		agg:        agg,
		history:    history.New(history.DefaultCapacity, model.SeriesKeys...),
		logger:     logger,
		interval:   cfg.Interval(),
		thresholds: cfg.WarningThresholds,
		state:      StateIdle,
		after:      time.After,
	}
}

// Subscribe registers fn for every future update.
func (p *Poller) Subscribe(fn Subscriber) {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
}

// State returns the current cycle state.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Interval returns the wait between cycles.
func (p *Poller) Interval() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interval
}

// SetInterval changes the wait used after the current cycle.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.interval = d
	p.mu.Unlock()
}

// Thresholds returns the thresholds used by the next evaluation.
func (p *Poller) Thresholds() config.Thresholds {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.thresholds
}

// SetThresholds replaces the thresholds used by the next evaluation.
func (p *Poller) SetThresholds(t config.Thresholds) {
	p.mu.Lock()
	p.thresholds = t
	p.mu.Unlock()
}

// Apply switches to new settings: interval, thresholds and, when the
// aggregator supports it, disk path and process count.
func (p *Poller) Apply(cfg config.Settings) {
	p.SetInterval(cfg.Interval())
	p.SetThresholds(cfg.WarningThresholds)
	if c, ok := p.agg.(Configurable); ok {
		c.Configure(cfg)
	}
	p.logger.Info("settings applied",
		"interval", cfg.Interval(),
		"thresholds", fmt.Sprintf("%+v", cfg.WarningThresholds),
	)
}

// Stats returns the number of completed and failed cycles.
func (p *Poller) Stats() (cycles, failures uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cycles, p.failures
}

// Run polls until ctx is cancelled. Cancellation is only observed between
// cycles; a cycle in flight always runs to completion. Run returns nil once
// stopped.
func (p *Poller) Run(ctx context.Context) error {
	defer p.setState(StateStopped)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("poll cycle failed", "error", err)
		}

		p.setState(StateWaiting)
		select {
		case <-ctx.Done():
			return nil
		case <-p.after(p.Interval()):
		}
	}
}

// RunOnce executes a single cycle and returns what it published. A panic
// anywhere in the cycle is recovered and reported as an error; nothing is
// published in that case.
func (p *Poller) RunOnce(ctx context.Context) (update model.Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poller: cycle panicked: %v", r)
			p.mu.Lock()
			p.failures++
			p.mu.Unlock()
		}
	}()

	p.setState(StatePolling)
	snap := p.agg.Aggregate(ctx)

	p.history.Append(model.SeriesCPU, snap.CPU.UsagePercent)
	p.history.Append(model.SeriesMemory, snap.Memory.UsagePercent)
	p.history.Append(model.SeriesDisk, snap.Disk.UsagePercent)
	p.history.Append(model.SeriesGPU, snap.GPU.UsagePercent)

	warnings := threshold.Evaluate(snap, p.Thresholds())
	for _, w := range warnings {
		p.logger.Warn("threshold exceeded", "metric", w.Metric, "value", w.ObservedValue)
	}

	update = model.Update{
		Snapshot: snap,
		History:  p.history.Snapshot(),
		Warnings: warnings,
	}

	p.setState(StatePublishing)
	p.mu.RLock()
	subs := make([]Subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(update)
	}

	p.mu.Lock()
	p.cycles++
	p.mu.Unlock()
	return update, nil
}

// Stream subscribes a channel of capacity buf (DefaultStreamBuffer when
// zero) and returns it. Updates are dropped while the channel is full so a
// slow reader never stalls the poller. The channel is closed when ctx is
// done.
func (p *Poller) Stream(ctx context.Context, buf int) <-chan model.Update {
	if buf <= 0 {
		buf = DefaultStreamBuffer
	}
	ch := make(chan model.Update, buf)

	var mu sync.Mutex
	closed := false
	p.Subscribe(func(u model.Update) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- u:
		default:
			p.logger.Debug("stream full, dropping update")
		}
	})
	go func() {
		<-ctx.Done()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
