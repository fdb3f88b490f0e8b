package watcher

import (
	"context"
	"time"

	"github.com/weavelint/weavelint/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-analysis
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run accumulates events until the input has been quiet for quietPeriod,
// or until maxWait has elapsed since the first pending event. Both
// timers fire into the select loop, so accumulation and flushing stay
// on one goroutine.
func (d *Debouncer) run(ctx context.Context) {
	quiet := time.NewTimer(d.quietPeriod)
	stopTimer(quiet)
	maxWait := time.NewTimer(d.maxWait)
	stopTimer(maxWait)

	accumulated := make(map[ChangeType][]string)
	eventCount := 0
	pending := false

	flush := func() {
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// Send events in order: markup first (it invalidates cross-file
		// resolution and forces the widest rebuild), then the others
		for _, kind := range []ChangeType{ChangeTypeMarkup, ChangeTypeScript, ChangeTypeStylesheet} {
			if paths := accumulated[kind]; len(paths) > 0 {
				d.output <- ChangeEvent{
					Type:      kind,
					Paths:     paths,
					Timestamp: time.Now(),
				}
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
		pending = false
		stopTimer(quiet)
		stopTimer(maxWait)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			stopTimer(quiet)
			quiet.Reset(d.quietPeriod)
			if !pending {
				pending = true
				stopTimer(maxWait)
				maxWait.Reset(d.maxWait)
			}

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// stopTimer stops a timer and drains its channel so a later Reset
// cannot observe a stale tick.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
