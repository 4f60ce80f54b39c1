package cooking

import (
	"context"
	"time"
)

// runner is a cancellable timer goroutine.
type runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startRunner(fn func(ctx context.Context)) *runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &runner{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		fn(ctx)
	}()
	return r
}

// stop cancels the goroutine and waits for it to exit, so nothing it
// publishes can arrive after stop returns.
func (r *runner) stop() {
	r.cancel()
	<-r.done
}

// finished reports whether the goroutine has exited on its own.
func (r *runner) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// runStopwatch publishes the elapsed time since start every interval.
func runStopwatch(ctx context.Context, stage Stage, label string, start time.Time, interval time.Duration, now func() time.Time, sink Sink) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			at := now()
			elapsed := int(at.Sub(start) / time.Second)
			sink.Publish(Event{
				Type:           EventStageTick,
				Stage:          stage,
				Label:          label,
				ElapsedSeconds: intPtr(elapsed),
				Display:        FormatClock(elapsed),
				At:             at,
			})
		}
	}
}

// runCountdown counts whole seconds down to zero, publishing the remaining
// time on every tick, and fires a single alarm when zero is reached.
func runCountdown(ctx context.Context, seconds int, interval time.Duration, now func() time.Time, sink Sink) {
	remaining := seconds
	sink.Publish(Event{
		Type:             EventCountdownTick,
		Stage:            PastaStart,
		RemainingSeconds: intPtr(remaining),
		Display:          FormatClock(remaining),
		At:               now(),
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			sink.Publish(Event{
				Type:             EventCountdownTick,
				Stage:            PastaStart,
				RemainingSeconds: intPtr(remaining),
				Display:          FormatClock(remaining),
				At:               now(),
			})
		}
	}

	sink.Publish(Event{
		Type:             EventAlarm,
		Stage:            PastaStart,
		RemainingSeconds: intPtr(0),
		Display:          FormatClock(0),
		Alarm:            BoilAlarm(),
		At:               now(),
	})
}
