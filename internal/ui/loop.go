package ui

import (
	"context"
	"sort"
	"time"
)

// Loop is a cooperative task scheduler with a virtual clock.
//
// Not safe for concurrent use.
type Loop struct {
	tasks    []func()
	ticks    []func()
	flushers []func()
	timers   []timer
	now      time.Duration
	timerSeq int64
	flushing bool
}

type timer struct {
	due time.Duration
	seq int64
	fn  func()
}

// NewLoop creates an idle loop at virtual time zero.
func NewLoop() *Loop {
	return &Loop{}
}

// Queue schedules fn to run during the next flush.
func (l *Loop) Queue(fn func()) {
	l.tasks = append(l.tasks, fn)
}

// NextTick schedules fn to run after all currently pending work and the
// render that follows it have flushed.
func (l *Loop) NextTick(fn func()) {
	l.ticks = append(l.ticks, fn)
}

// OnFlush registers fn to run each time the task queue drains. Instances use
// it to re-render.
func (l *Loop) OnFlush(fn func()) {
	l.flushers = append(l.flushers, fn)
}

// After schedules fn to run once the virtual clock reaches now+d.
// Timers with the same due time run in registration order.
func (l *Loop) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	l.timerSeq++
	l.timers = append(l.timers, timer{due: l.now + d, seq: l.timerSeq, fn: fn})
	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].due != l.timers[j].due {
			return l.timers[i].due < l.timers[j].due
		}
		return l.timers[i].seq < l.timers[j].seq
	})
}

// Now returns the virtual time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return l.now
}

// Pending reports whether tasks or next-tick callbacks are waiting.
func (l *Loop) Pending() bool {
	return len(l.tasks) > 0 || len(l.ticks) > 0
}

// Timers returns the number of scheduled timers.
func (l *Loop) Timers() int {
	return len(l.timers)
}

// Tick flushes queued tasks, runs flush hooks, then runs next-tick callbacks,
// repeating until nothing is queued. Calling Tick from inside a flush is a
// no-op: the outer flush picks up whatever the caller queued.
func (l *Loop) Tick() {
	if l.flushing {
		return
	}
	l.flushing = true
	defer func() { l.flushing = false }()

	for {
		for len(l.tasks) > 0 {
			fn := l.tasks[0]
			l.tasks[0] = nil
			l.tasks = l.tasks[1:]
			fn()
		}
		for _, fn := range l.flushers {
			fn()
		}
		if len(l.ticks) == 0 {
			if len(l.tasks) == 0 {
				return
			}
			continue
		}
		ticks := l.ticks
		l.ticks = nil
		for _, fn := range ticks {
			fn()
		}
	}
}

// Settle ticks until idle, firing timers due within horizon of the current
// virtual time. Timers beyond the horizon stay scheduled.
func (l *Loop) Settle(ctx context.Context, horizon time.Duration) error {
	limit := l.now + horizon
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Tick()
		if len(l.timers) == 0 || l.timers[0].due > limit {
			return nil
		}
		next := l.timers[0]
		l.timers[0] = timer{}
		l.timers = l.timers[1:]
		l.now = next.due
		next.fn()
	}
}
