// Package clock abstracts the single-shot delayed callback the reminder
// subsystem is built on, so simulated time can drive it in tests.
package clock

import (
	"sort"
	"time"
)

// Handle cancels a pending callback. Stop reports whether the callback was
// still pending; stopping a fired or stopped handle is a no-op.
type Handle interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Handle
}

// Fake is a manually advanced clock. Callbacks run synchronously inside
// Advance and Set, in fire-time order, on the caller's goroutine.
type Fake struct {
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	f.seq++
	t := &fakeTimer{at: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *Fake) Advance(d time.Duration) {
	f.Set(f.now.Add(d))
}

// Set moves the clock to target, firing every callback due at or before it.
// Callbacks registered while firing are honored if they fall inside the window.
func (f *Fake) Set(target time.Time) {
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.now = next.at
		next.fired = true
		next.fn()
	}
	if target.After(f.now) {
		f.now = target
	}
	f.prune()
}

// Pending counts callbacks that are neither fired nor stopped.
func (f *Fake) Pending() int {
	n := 0
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	live := make([]*fakeTimer, 0, len(f.timers))
	for _, t := range f.timers {
		if !t.fired && !t.stopped && !t.at.After(target) {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].seq < live[j].seq
		}
		return live[i].at.Before(live[j].at)
	})
	return live[0]
}

func (f *Fake) prune() {
	kept := f.timers[:0]
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			kept = append(kept, t)
		}
	}
	f.timers = kept
}
