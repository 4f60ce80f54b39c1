package cooking

import (
	"context"
	"sort"
	"sync"
	"time"

	"pasta-logger/internal/model"
)

// Options configures a Process.
type Options struct {
	// TickInterval is how often stopwatches and the countdown advance.
	TickInterval time.Duration
	// BoilSeconds is the initial boil countdown length.
	BoilSeconds int
	// Now is the clock used for tick timestamps. Defaults to time.Now.
	Now func() time.Time
	// IdleTimeout is how long a Tracker keeps a process nobody touches.
	// Zero keeps processes until they are reset.
	IdleTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.BoilSeconds <= 0 {
		o.BoilSeconds = DefaultBoilTime
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Marks are the legacy boil-start/up/combine-end timestamps.
type Marks struct {
	BoilStart  *time.Time `json:"B"`
	Up         *time.Time `json:"U"`
	CombineEnd *time.Time `json:"C"`
}

// Snapshot is a copy of a process's state.
type Snapshot struct {
	Times            map[Stage]time.Time `json:"times"`
	Marks            Marks               `json:"marks"`
	CookStart        *time.Time          `json:"cookStart,omitempty"`
	TotalSeconds     *int                `json:"totalSeconds,omitempty"`
	Boil             BoilDuration        `json:"boil"`
	CountdownRunning bool                `json:"countdownRunning"`
	RunningStages    []Stage             `json:"runningStages"`
	Analysis         AnalysisReport      `json:"analysis"`
}

// Empty reports whether no stage has been recorded.
func (s Snapshot) Empty() bool {
	return len(s.Times) == 0
}

// StageTimes returns the recorded times keyed by stage name.
func (s Snapshot) StageTimes() map[string]time.Time {
	if len(s.Times) == 0 {
		return nil
	}
	out := make(map[string]time.Time, len(s.Times))
	for st, at := range s.Times {
		out[string(st)] = at
	}
	return out
}

// Process is the state of one cooking session. It is safe for concurrent use.
type Process struct {
	mu        sync.Mutex
	opts      Options
	sink      Sink
	times     map[Stage]time.Time
	marks     Marks
	cookStart *time.Time
	boil      BoilDuration
	stopwatch map[Stage]*runner
	countdown *runner
	closed    bool
}

// NewProcess creates an idle process. A nil sink discards events.
func NewProcess(opts Options, sink Sink) *Process {
	opts = opts.withDefaults()
	if sink == nil {
		sink = discardSink{}
	}
	return &Process{
		opts:      opts,
		sink:      sink,
		times:     make(map[Stage]time.Time),
		boil:      NewBoilDuration(opts.BoilSeconds),
		stopwatch: make(map[Stage]*runner),
	}
}

// Record stores the time a stage was reached and drives the timers that
// depend on it. Each stage can be recorded once.
func (p *Process) Record(stage Stage, at time.Time) error {
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, done := p.times[stage]; done {
		return model.ErrStageAlreadyRecorded
	}

	if p.cookStart == nil && (stage == SauceStart || stage == PastaStart) {
		start := at
		p.cookStart = &start
	}

	p.times[stage] = at
	p.syncMark(stage, at)

	p.sink.Publish(Event{
		Type:  EventStageRecorded,
		Stage: stage,
		Label: stage.Label(),
		At:    at,
	})

	if sw, ok := stopwatches[stage]; ok && !p.closed {
		p.startStopwatch(stage, sw.label, at)
	}

	if start, ok := startOf[stage]; ok {
		p.finishStopwatch(start, at)
	}

	switch stage {
	case PastaStart:
		if !p.closed {
			p.startCountdown(p.boil.TotalSeconds())
		}
	case Completion:
		report := Analyze(p.times).Report()
		p.sink.Publish(Event{Type: EventAnalysis, Analysis: &report, At: at})
	}

	return nil
}

// Stamp records the stage behind a legacy mark button.
func (p *Process) Stamp(mark Mark, at time.Time) error {
	if _, err := ParseMark(string(mark)); err != nil {
		return err
	}
	return p.Record(mark.Stage(), at)
}

func (p *Process) syncMark(stage Stage, at time.Time) {
	t := at
	switch stage {
	case PastaStart:
		p.marks.BoilStart = &t
	case PastaFinish:
		p.marks.Up = &t
	case CombineStart:
		p.marks.CombineEnd = &t
	}
}

func (p *Process) startStopwatch(stage Stage, label string, start time.Time) {
	if r, ok := p.stopwatch[stage]; ok {
		r.stop()
	}
	interval, now, sink := p.opts.TickInterval, p.opts.Now, p.sink
	p.stopwatch[stage] = startRunner(func(ctx context.Context) {
		runStopwatch(ctx, stage, label, start, interval, now, sink)
	})
}

// finishStopwatch stops the stopwatch of a start stage and publishes its
// final elapsed time.
func (p *Process) finishStopwatch(start Stage, end time.Time) {
	if r, ok := p.stopwatch[start]; ok {
		r.stop()
		delete(p.stopwatch, start)
	}
	begun, ok := p.times[start]
	if !ok {
		return
	}
	elapsed := int(end.Sub(begun) / time.Second)
	p.sink.Publish(Event{
		Type:           EventStageDone,
		Stage:          start,
		Label:          stopwatches[start].label,
		ElapsedSeconds: intPtr(elapsed),
		Display:        FormatClock(elapsed),
		At:             end,
	})
}

func (p *Process) startCountdown(seconds int) {
	if p.countdown != nil {
		p.countdown.stop()
	}
	interval, now, sink := p.opts.TickInterval, p.opts.Now, p.sink
	p.countdown = startRunner(func(ctx context.Context) {
		runCountdown(ctx, seconds, interval, now, sink)
	})
}

// StartCountdown (re)starts the boil countdown with the current boil duration.
func (p *Process) StartCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.startCountdown(p.boil.TotalSeconds())
}

// StopCountdown stops a running countdown without firing the alarm.
func (p *Process) StopCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.countdown != nil {
		p.countdown.stop()
		p.countdown = nil
	}
}

// SetBoil changes the boil duration used by the next countdown.
func (p *Process) SetBoil(d BoilDuration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boil = d.clamp()
}

// StepBoil applies a stepper operation to the boil duration.
func (p *Process) StepBoil(op string) (BoilDuration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, err := p.boil.Step(op)
	if err != nil {
		return p.boil, err
	}
	p.boil = next
	return next, nil
}

// Snapshot copies the current state.
func (p *Process) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	times := make(map[Stage]time.Time, len(p.times))
	for st, at := range p.times {
		times[st] = at
	}

	snap := Snapshot{
		Times:            times,
		Marks:            p.marks,
		Boil:             p.boil,
		CountdownRunning: p.countdown != nil && !p.countdown.finished(),
		RunningStages:    []Stage{},
		Analysis:         Analyze(p.times).Report(),
	}
	if p.cookStart != nil {
		start := *p.cookStart
		snap.CookStart = &start
		if done, ok := p.times[Completion]; ok {
			snap.TotalSeconds = intPtr(int(done.Sub(start) / time.Second))
		}
	}
	for st, r := range p.stopwatch {
		if !r.finished() {
			snap.RunningStages = append(snap.RunningStages, st)
		}
	}
	sort.Slice(snap.RunningStages, func(i, j int) bool { return snap.RunningStages[i] < snap.RunningStages[j] })
	return snap
}

// Close stops every timer. A closed process still accepts records but
// starts no new timers.
func (p *Process) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for st, r := range p.stopwatch {
		r.stop()
		delete(p.stopwatch, st)
	}
	if p.countdown != nil {
		p.countdown.stop()
		p.countdown = nil
	}
}
