package mapview

import (
	"sync"
	"time"

	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// DefaultOutOfBoundsDuration is how long the "outside coverage area" notice stays up.
const DefaultOutOfBoundsDuration = 3000 * time.Millisecond

// OutOfBoundsFlag is the transient notice shown after a rejected pick.
// Raising it restarts a single auto-clear timer, and a timer left over from
// an earlier raise can never clear a later one.
type OutOfBoundsFlag struct {
	clock    ports.Clock
	lock     sync.Locker
	duration time.Duration
	onChange func(shown bool)

	shown bool
	gen   uint64
	timer ports.Timer
}

func newOutOfBoundsFlag(clock ports.Clock, lock sync.Locker, d time.Duration, onChange func(bool)) *OutOfBoundsFlag {
	return &OutOfBoundsFlag{clock: clock, lock: lock, duration: d, onChange: onChange}
}

// Shown reports whether the notice is visible.
func (f *OutOfBoundsFlag) Shown() bool { return f.shown }

// Raise shows the notice and restarts the auto-clear window.
func (f *OutOfBoundsFlag) Raise() {
	f.cancel()
	gen := f.gen
	f.timer = f.clock.AfterFunc(f.duration, func() {
		f.lock.Lock()
		defer f.lock.Unlock()
		f.expire(gen)
	})
	f.set(true)
}

// Clear hides the notice and drops any pending timer.
func (f *OutOfBoundsFlag) Clear() {
	f.cancel()
	f.set(false)
}

func (f *OutOfBoundsFlag) cancel() {
	f.gen++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *OutOfBoundsFlag) expire(gen uint64) {
	if gen != f.gen {
		return
	}
	f.timer = nil
	f.set(false)
}

func (f *OutOfBoundsFlag) set(shown bool) {
	if f.shown == shown {
		return
	}
	f.shown = shown
	if f.onChange != nil {
		f.onChange(shown)
	}
}
