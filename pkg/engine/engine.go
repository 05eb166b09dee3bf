package engine

import (
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

type Options struct {
	// MonitorCameras and MonitorMicrophones gate the respective signal
	// entirely; a disabled class contributes false no matter what the
	// snapshots say.
	MonitorCameras     bool
	MonitorMicrophones bool

	// HonorConferenceMute lets the conferencing application's mute
	// control suppress the microphone signal while that application is
	// running. It never touches the camera signal.
	HonorConferenceMute bool

	// CameraOffDebounce delays reaction to camera-stopped reports; zero
	// disables the debounce.
	CameraOffDebounce time.Duration
}

// Engine is the single source of truth for the combined usage state. All
// signal paths (device events, debounce fires, conference polls, the user
// mute toggle) end up here; every entry point serializes on one mutex so
// each broadcast completes before the next event is processed, and all
// indicators observe transitions in registration order.
type Engine struct {
	options  Options
	provider device.Provider
	registry *indicator.Registry
	debounce Debounce

	cameraInUse       bool
	micInUse          bool
	conferenceRunning bool
	conferenceMuted   bool
	userMuted         bool

	lastBroadcast *display.State
	mutex         sync.Mutex
}

func New(options Options, provider device.Provider, scheduler sched.Scheduler, registry *indicator.Registry) *Engine {
	result := &Engine{
		options:  options,
		provider: provider,
		registry: registry,
	}
	result.debounce = Debounce{
		Delay:      options.CameraOffDebounce,
		Scheduler:  scheduler,
		StillInUse: result.anyCameraInUse,
		Emit:       result.cameraConfirmedUnused,
	}
	return result
}

// Recompute derives the current display state from the authoritative
// booleans. It is free of side effects; the cached last-broadcast value
// is only touched by the broadcasting paths.
func (this *Engine) Recompute(instigator string) display.State {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.recompute(instigator)
}

func (this *Engine) recompute(instigator string) display.State {
	camera := this.options.MonitorCameras && this.cameraInUse

	mic := this.options.MonitorMicrophones && this.micInUse
	if mic && this.options.HonorConferenceMute && this.conferenceRunning && this.conferenceMuted {
		// The conference override only applies while the application is
		// actually running; otherwise it is inert, not false.
		mic = false
	}

	result := display.Compute(camera, mic, this.userMuted)
	log.With("instigator", instigator).
		With("state", result).
		Debug("Display state recomputed.")
	return result
}

// Broadcast pushes the current state to every indicator even if nothing
// changed, e.g. for the initial rendering after startup.
func (this *Engine) Broadcast(instigator string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.broadcast(instigator, true)
}

// CurrentState answers the on-demand query of presentation layers.
func (this *Engine) CurrentState() display.State {
	return this.Recompute("query")
}

// UserMuted reports the current user mute toggle.
func (this *Engine) UserMuted() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.userMuted
}

// SetUserMuted flips the user toggle, tells every indicator about the
// mute/unmute and broadcasts the resulting state.
func (this *Engine) SetUserMuted(muted bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.userMuted = muted
	if muted {
		this.registry.BroadcastMute()
	} else {
		this.registry.BroadcastUnmute()
	}
	this.broadcast("user-mute", true)
}

// ConferenceMuteChanged caches the conference application's mute control
// state. A broadcast only goes out if the resulting display state
// actually differs from the previously broadcast one.
func (this *Engine) ConferenceMuteChanged(muted bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.conferenceMuted = muted
	this.broadcast("conference-mute", false)
}

// ConferenceRunningChanged tracks the conference application lifecycle;
// while it is not running the mute override has no effect.
func (this *Engine) ConferenceRunningChanged(running bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.conferenceRunning = running
	this.broadcast("conference-lifecycle", false)
}

// DeviceBecameUsed propagates immediately for both classes.
func (this *Engine) DeviceBecameUsed(v device.Device) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	switch v.Kind {
	case device.KindCamera:
		this.cameraInUse = true
		this.broadcast("camera-used", false)
	case device.KindMicrophone:
		this.micInUse = true
		this.broadcast("microphone-used", false)
	default:
		log.With("device", v).
			Info("Event for a device of unknown kind. Ignoring.")
	}
}

// DeviceBecameUnused runs the camera transition through the debounce; the
// microphone transition is re-validated against a fresh snapshot so that
// one of several microphones stopping does not clear the signal while
// another one is still open.
func (this *Engine) DeviceBecameUnused(v device.Device) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	switch v.Kind {
	case device.KindCamera:
		if this.debounce.Delay <= 0 {
			this.cameraInUse = false
			this.broadcast("camera-unused", false)
			return
		}
		this.debounce.CameraBecameUnused(v)
	case device.KindMicrophone:
		stillInUse, err := this.anyMicrophoneInUse(v)
		if err != nil {
			log.WithError(err).
				With("device", v).
				Error("Cannot re-check microphone usage. No display update for this event.")
			return
		}
		this.micInUse = stillInUse
		this.broadcast("microphone-unused", false)
	default:
		log.With("device", v).
			Info("Event for a device of unknown kind. Ignoring.")
	}
}

func (this *Engine) cameraConfirmedUnused(v device.Device) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.cameraInUse = false
	this.broadcast("camera-unused", false)
}

// broadcast recomputes and, unless forced, suppresses redundant
// notifications to the indicators. Callers hold the mutex.
func (this *Engine) broadcast(instigator string, force bool) {
	state := this.recompute(instigator)

	if !force && this.lastBroadcast != nil && *this.lastBroadcast == state {
		return
	}
	if this.lastBroadcast == nil || *this.lastBroadcast != state {
		logger := log.With("state", state).
			With("instigator", instigator)
		if this.lastBroadcast != nil {
			logger = logger.With("lastState", *this.lastBroadcast)
		}
		logger.Info("State change detected.")
	}

	this.lastBroadcast = &state
	this.registry.BroadcastUpdate(indicator.NewContext(state, this.activeDevices()))
}

func (this *Engine) activeDevices() device.Devices {
	if this.provider == nil {
		return nil
	}
	all, err := this.provider.FindDevices()
	if err != nil {
		log.WithError(err).
			Debug("Cannot enumerate devices for the broadcast context. Indicators get none.")
		return nil
	}
	var result device.Devices
	for v := range all.InUse() {
		result = append(result, v)
	}
	return result
}

func (this *Engine) anyCameraInUse(device.Device) (bool, error) {
	// Deliberately class wide: if any camera is live at fire time the
	// stop was either a glitch or another camera took over; either way
	// nothing must be published.
	active, err := device.ListActiveCameras(this.provider)
	if err != nil {
		return false, err
	}
	return active.HasContent(), nil
}

func (this *Engine) anyMicrophoneInUse(device.Device) (bool, error) {
	active, err := device.ListActiveMicrophones(this.provider)
	if err != nil {
		return false, err
	}
	return active.HasContent(), nil
}
