package sched

import (
	"sync"
	"time"
)

// Handle refers to a scheduled callback. Cancel is idempotent; cancelling
// an already fired one-shot is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler abstracts the timer primitives so that components holding
// deferred or repeated work stay testable.
type Scheduler interface {
	// After runs fn once after d has elapsed.
	After(d time.Duration, fn func()) Handle

	// Every runs fn repeatedly every d until the handle is cancelled.
	Every(d time.Duration, fn func()) Handle
}

func NewSystem() Scheduler {
	return &system{}
}

type system struct{}

func (this *system) After(d time.Duration, fn func()) Handle {
	t := time.AfterFunc(d, fn)
	return handleFunc(func() {
		t.Stop()
	})
}

func (this *system) Every(d time.Duration, fn func()) Handle {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return handleFunc(func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	})
}

type handleFunc func()

func (this handleFunc) Cancel() {
	this()
}
