package conference

import (
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/sched"
)

const DefaultPollInterval = 5 * time.Second

// Monitor watches a conferencing application: whether it is running and,
// while it is, whether its mute control is engaged. It is a two-state
// machine (inactive/active); the mute callback only fires on actual
// changes of the cached value.
type Monitor struct {
	Probe        Probe
	Scheduler    sched.Scheduler
	PollInterval time.Duration

	// OnMuteChanged receives the new mute value. Errors raised by it are
	// logged and never stop the polling.
	OnMuteChanged func(muted bool) error

	// OnRunningChanged receives application lifecycle transitions.
	OnRunningChanged func(running bool) error

	active bool
	muted  bool
	handle sched.Handle
	mutex  sync.Mutex
}

func (this *Monitor) Start() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.handle != nil {
		return nil
	}
	if this.Probe == nil {
		return fmt.Errorf("no probe configured")
	}
	if this.Scheduler == nil {
		return fmt.Errorf("no scheduler configured")
	}

	interval := this.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	this.tick()
	this.handle = this.Scheduler.Every(interval, func() {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		this.tick()
	})
	return nil
}

func (this *Monitor) Stop() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.handle == nil {
		return nil
	}
	this.handle.Cancel()
	this.handle = nil
	return nil
}

// Running reports whether the application was seen running at the last
// poll.
func (this *Monitor) Running() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.active
}

// Muted returns the last cached mute value. It is only authoritative
// while Running reports true.
func (this *Monitor) Muted() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.muted
}

func (this *Monitor) tick() {
	running, err := this.Probe.IsRunning()
	if err != nil {
		log.WithError(err).
			Error("Cannot determine if the conference application is running.")
		return
	}

	if running != this.active {
		this.active = running
		log.With("running", running).
			Info("Conference application lifecycle change detected.")
		this.invoke("lifecycle", this.OnRunningChanged, running)
	}

	if !this.active {
		// The cached mute value is left as it is; it is simply not
		// authoritative while the application is gone.
		return
	}

	muted, err := this.Probe.IsMuted()
	if err != nil {
		log.WithError(err).
			Warn("Cannot read the conference application's mute control.")
		return
	}

	if muted == this.muted {
		return
	}
	this.muted = muted
	log.With("muted", muted).
		Debug("Conference application mute change detected.")
	this.invoke("mute", this.OnMuteChanged, muted)
}

func (this *Monitor) invoke(event string, fn func(bool) error, v bool) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.With("event", event).
				With("panic", r).
				Error("Callback panicked. Polling continues.")
		}
	}()
	if err := fn(v); err != nil {
		log.WithError(err).
			With("event", event).
			Error("Callback failed. Polling continues.")
	}
}
