package cooking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SinkFactory returns the sink that receives one user's events.
type SinkFactory func(userID uuid.UUID) Sink

type trackedProcess struct {
	process *Process
	touched time.Time
}

// Tracker keeps one in-progress Process per user until the session is
// saved, reset or left idle for longer than Options.IdleTimeout.
type Tracker struct {
	mu        sync.Mutex
	processes map[uuid.UUID]*trackedProcess
	opts      Options
	sinks     SinkFactory
	logger    zerolog.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTracker creates an empty tracker. A nil factory discards events. When
// opts.IdleTimeout is positive a background sweep evicts idle processes
// until Close.
func NewTracker(opts Options, sinks SinkFactory, logger zerolog.Logger) *Tracker {
	if sinks == nil {
		sinks = func(uuid.UUID) Sink { return discardSink{} }
	}
	t := &Tracker{
		processes: make(map[uuid.UUID]*trackedProcess),
		opts:      opts,
		sinks:     sinks,
		logger:    logger.With().Str("component", "cooking-tracker").Logger(),
		done:      make(chan struct{}),
	}
	if opts.IdleTimeout > 0 {
		t.wg.Add(1)
		go t.sweep(sweepInterval(opts.IdleTimeout))
	}
	return t
}

func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func (t *Tracker) now() time.Time {
	if t.opts.Now != nil {
		return t.opts.Now()
	}
	return time.Now()
}

// Get returns the user's process, creating it on first use.
func (t *Tracker) Get(userID uuid.UUID) *Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tp, ok := t.processes[userID]; ok {
		tp.touched = t.now()
		return tp.process
	}
	p := NewProcess(t.opts, t.sinks(userID))
	t.processes[userID] = &trackedProcess{process: p, touched: t.now()}
	t.logger.Debug().Str("user_id", userID.String()).Msg("cooking process created")
	return p
}

// Peek returns the user's process without creating one.
func (t *Tracker) Peek(userID uuid.UUID) (*Process, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tp, ok := t.processes[userID]
	if !ok {
		return nil, false
	}
	tp.touched = t.now()
	return tp.process, true
}

// Reset stops and forgets the user's process.
func (t *Tracker) Reset(userID uuid.UUID) {
	t.mu.Lock()
	tp, ok := t.processes[userID]
	delete(t.processes, userID)
	t.mu.Unlock()

	if ok {
		tp.process.Close()
		t.logger.Debug().Str("user_id", userID.String()).Msg("cooking process reset")
	}
}

// EvictIdle stops and forgets every process untouched for at least
// Options.IdleTimeout and returns how many were removed. It does nothing
// when no timeout is set.
func (t *Tracker) EvictIdle() int {
	if t.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := t.now().Add(-t.opts.IdleTimeout)

	t.mu.Lock()
	var idle []*Process
	for id, tp := range t.processes {
		if !tp.touched.After(cutoff) {
			idle = append(idle, tp.process)
			delete(t.processes, id)
		}
	}
	t.mu.Unlock()

	for _, p := range idle {
		p.Close()
	}
	if len(idle) > 0 {
		t.logger.Info().Int("processes", len(idle)).Dur("idle_timeout", t.opts.IdleTimeout).Msg("evicted idle cooking processes")
	}
	return len(idle)
}

func (t *Tracker) sweep(interval time.Duration) {
	defer t.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.EvictIdle()
		}
	}
}

// Active returns how many users have a process in progress.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.processes)
}

// Close stops the idle sweep and every process.
func (t *Tracker) Close() {
	t.stopOnce.Do(func() { close(t.done) })
	t.wg.Wait()

	t.mu.Lock()
	procs := t.processes
	t.processes = make(map[uuid.UUID]*trackedProcess)
	t.mu.Unlock()

	for _, tp := range procs {
		tp.process.Close()
	}
	t.logger.Info().Int("processes", len(procs)).Msg("cooking tracker closed")
}
