package sched

import (
	"context"
	"sync"
	"time"

	"aura-vcf-bot/internal/infra/worker"

	"github.com/rs/zerolog"
)

// Submitter hands fired callbacks to a worker pool.
type Submitter interface {
	Submit(task worker.Task) error
}

// Debouncer runs a callback per key once no new Arm call arrived for the
// quiet period. Re-arming a key replaces its pending callback.
type Debouncer struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	gens   map[int64]uint64
	delay  time.Duration
	pool   Submitter
	log    *zerolog.Logger
}

func NewDebouncer(delay time.Duration, pool Submitter, logger *zerolog.Logger) *Debouncer {
	l := logger.With().Str("component", "Debouncer").Logger()
	return &Debouncer{
		timers: make(map[int64]*time.Timer),
		gens:   make(map[int64]uint64),
		delay:  delay,
		pool:   pool,
		log:    &l,
	}
}

// Delay is the configured quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Arm (re)starts the quiet-period timer for key.
func (d *Debouncer) Arm(key int64, fn worker.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.gens[key]++
	gen := d.gens[key]
	d.timers[key] = time.AfterFunc(d.delay, func() { d.fire(key, gen, fn) })
}

func (d *Debouncer) fire(key int64, gen uint64, fn worker.Task) {
	d.mu.Lock()
	// a newer Arm or a Cancel superseded this timer
	if d.gens[key] != gen {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	delete(d.gens, key)
	d.mu.Unlock()

	if err := d.pool.Submit(fn); err != nil {
		d.log.Warn().Err(err).Int64("key", key).Msg("pool rejected task; running inline")
		go func() {
			if err := fn(context.Background()); err != nil {
				d.log.Error().Err(err).Int64("key", key).Msg("inline task failed")
			}
		}()
	}
}

// Cancel drops the pending callback for key and reports whether one existed.
func (d *Debouncer) Cancel(key int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(d.timers, key)
	delete(d.gens, key)
	return true
}

// Pending reports whether key has an armed timer.
func (d *Debouncer) Pending(key int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, t := range d.timers {
		t.Stop()
		delete(d.timers, k)
		delete(d.gens, k)
	}
}
