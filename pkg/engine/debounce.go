package engine

import (
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

// Debounce filters the camera "became unused" transition. Around sleep
// and wake the platform briefly reports the camera as stopped although it
// comes right back; reacting immediately makes every indicator flicker.
//
// The deferred check re-reads the live state at fire time. That is the
// whole correctness story: a process suspended past the delay still
// evaluates reality when it resumes, and a camera that came back in the
// meantime produces zero observable effects.
type Debounce struct {
	Delay     time.Duration
	Scheduler sched.Scheduler

	// StillInUse re-checks, at fire time, whether camera usage persists.
	StillInUse func(device.Device) (bool, error)

	// Emit publishes the confirmed "camera unused" signal, exactly once
	// per confirmed transition.
	Emit func(device.Device)
}

// CameraBecameUnused either signals right away (zero delay) or arms the
// deferred check. "Became used" transitions never pass through here; they
// always propagate immediately.
func (this *Debounce) CameraBecameUnused(v device.Device) {
	if this.Delay <= 0 {
		this.Emit(v)
		return
	}

	log.With("device", v).
		With("delay", this.Delay).
		Debug("Camera reported unused. Scheduling the deferred check...")

	this.Scheduler.After(this.Delay, func() {
		this.fire(v)
	})
}

func (this *Debounce) fire(v device.Device) {
	stillInUse, err := this.StillInUse(v)
	if err != nil {
		log.WithError(err).
			With("device", v).
			Error("Cannot re-check camera usage on deferred check. Dropping the transition.")
		return
	}
	if stillInUse {
		log.With("device", v).
			Debug("Camera is in use again. The stop was a glitch; dropping the transition.")
		return
	}

	this.Emit(v)
}
