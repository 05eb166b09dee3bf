package device

import (
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/sched"
)

// Events receives device transitions from a Source. Nil members are
// simply skipped.
type Events struct {
	OnAdded        func(Device)
	OnRemoved      func(Device)
	OnBecameUsed   func(Device)
	OnBecameUnused func(Device)
}

// Source feeds device transitions into the aggregation. There are two
// implementations: a push one wrapping native platform callbacks and a
// poll one diffing snapshots, for hosts where the native subscription does
// not fire reliably. Consumers must not care which one is active.
type Source interface {
	Start(Events) error
	Stop() error
}

// NewPollSource creates a Source which polls the given provider and
// derives transitions by diffing consecutive snapshots.
func NewPollSource(provider Provider, scheduler sched.Scheduler, interval time.Duration) Source {
	return &pollSource{
		provider:  provider,
		scheduler: scheduler,
		interval:  interval,
	}
}

type pollSource struct {
	provider  Provider
	scheduler sched.Scheduler
	interval  time.Duration

	events Events
	known  Devices
	handle sched.Handle
	mutex  sync.Mutex
}

func (this *pollSource) Start(events Events) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.handle != nil {
		return nil
	}
	if this.interval <= 0 {
		return fmt.Errorf("illegal poll interval: %v", this.interval)
	}

	this.events = events
	this.known = nil
	this.poll()
	this.handle = this.scheduler.Every(this.interval, this.poll)
	return nil
}

func (this *pollSource) Stop() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.handle == nil {
		return nil
	}
	this.handle.Cancel()
	this.handle = nil
	return nil
}

func (this *pollSource) poll() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	current, err := this.provider.FindDevices()
	if err != nil {
		log.WithError(err).
			Error("Cannot take device snapshot. Keeping the last known one.")
		return
	}

	previous := this.known
	this.known = current

	for _, v := range current {
		old, existed := previous.ByID(v.ID)
		if !existed {
			this.emit(this.events.OnAdded, v)
			if v.InUse {
				this.emit(this.events.OnBecameUsed, v)
			}
			continue
		}
		if v.InUse && !old.InUse {
			this.emit(this.events.OnBecameUsed, v)
		} else if !v.InUse && old.InUse {
			this.emit(this.events.OnBecameUnused, v)
		}
	}

	for _, old := range previous {
		if _, stillThere := current.ByID(old.ID); !stillThere {
			if old.InUse {
				old.InUse = false
				this.emit(this.events.OnBecameUnused, old)
			}
			this.emit(this.events.OnRemoved, old)
		}
	}
}

func (this *pollSource) emit(fn func(Device), v Device) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.With("device", v).
				With("panic", r).
				Error("Device event handler panicked. Continuing.")
		}
	}()
	fn(v)
}

// NewEventSource creates a Source backed by a native platform
// subscription. The subscribe function is expected to register the given
// events and return an unsubscribe function.
func NewEventSource(subscribe func(Events) (func() error, error)) Source {
	return &eventSource{subscribe: subscribe}
}

type eventSource struct {
	subscribe   func(Events) (func() error, error)
	unsubscribe func() error
	mutex       sync.Mutex
}

func (this *eventSource) Start(events Events) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.unsubscribe != nil {
		return nil
	}

	unsubscribe, err := this.subscribe(events)
	if err != nil {
		return fmt.Errorf("cannot subscribe to native device events: %w", err)
	}
	this.unsubscribe = unsubscribe
	return nil
}

func (this *eventSource) Stop() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.unsubscribe == nil {
		return nil
	}
	defer func() {
		this.unsubscribe = nil
	}()
	return this.unsubscribe()
}
