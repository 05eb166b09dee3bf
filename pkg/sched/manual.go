package sched

import (
	"sort"
	"time"
)

// NewManual creates a Scheduler driven by an explicit virtual clock.
// Callbacks run synchronously inside Advance, in due order.
func NewManual() *Manual {
	return &Manual{}
}

type Manual struct {
	now     time.Duration
	entries []*manualEntry
	nextId  uint64
}

func (this *Manual) After(d time.Duration, fn func()) Handle {
	return this.add(d, fn, 0)
}

func (this *Manual) Every(d time.Duration, fn func()) Handle {
	return this.add(d, fn, d)
}

// Now returns the current virtual time.
func (this *Manual) Now() time.Duration {
	return this.now
}

// Pending returns how many scheduled callbacks are still armed.
func (this *Manual) Pending() int {
	result := 0
	for _, e := range this.entries {
		if !e.cancelled {
			result++
		}
	}
	return result
}

// Advance moves the virtual clock forward and fires everything that comes
// due along the way, earliest first.
func (this *Manual) Advance(d time.Duration) {
	target := this.now + d
	for {
		e := this.nextDueBefore(target)
		if e == nil {
			break
		}

		this.now = e.due
		if e.every > 0 {
			e.due += e.every
		} else {
			e.cancelled = true
		}
		e.fn()
	}
	this.now = target
}

func (this *Manual) add(d time.Duration, fn func(), every time.Duration) Handle {
	this.nextId++
	e := &manualEntry{
		id:    this.nextId,
		due:   this.now + d,
		every: every,
		fn:    fn,
	}
	this.entries = append(this.entries, e)
	return e
}

func (this *Manual) nextDueBefore(target time.Duration) *manualEntry {
	var candidates []*manualEntry
	for _, e := range this.entries {
		if !e.cancelled && e.due <= target {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due != candidates[j].due {
			return candidates[i].due < candidates[j].due
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates[0]
}

type manualEntry struct {
	id        uint64
	due       time.Duration
	every     time.Duration
	fn        func()
	cancelled bool
}

func (this *manualEntry) Cancel() {
	this.cancelled = true
}
