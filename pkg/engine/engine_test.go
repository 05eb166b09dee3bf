package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

type stateRecorder struct {
	states []display.State
}

func (this *stateRecorder) Update(ctx indicator.Context) error {
	this.states = append(this.states, ctx.State())
	return nil
}

func (this *stateRecorder) Refresh() error { return nil }
func (this *stateRecorder) Mute() error    { return nil }
func (this *stateRecorder) Unmute() error  { return nil }
func (this *stateRecorder) Show() error    { return nil }
func (this *stateRecorder) Hide() error    { return nil }
func (this *stateRecorder) Dispose() error { return nil }

type engineFixture struct {
	engine   *Engine
	clock    *sched.Manual
	recorder *stateRecorder
	snapshot device.Devices
}

func newFixture(options Options) *engineFixture {
	result := &engineFixture{
		clock:    sched.NewManual(),
		recorder: &stateRecorder{},
	}
	registry := &indicator.Registry{}
	registry.Register(result.recorder)
	result.engine = New(options, device.ProviderFunc(func() (device.Devices, error) {
		return result.snapshot, nil
	}), result.clock, registry)
	return result
}

func allOn() Options {
	return Options{
		MonitorCameras:      true,
		MonitorMicrophones:  true,
		HonorConferenceMute: true,
	}
}

var (
	cam1 = device.Device{ID: "cam1", Kind: device.KindCamera, Name: "Front Camera"}
	mic1 = device.Device{ID: "mic1", Kind: device.KindMicrophone, Name: "Desk Microphone"}
)

func TestEngine_micOnlyYieldsMicActive(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(mic1)

	assert.Equal(t, display.StateMicActive, f.engine.CurrentState())
	assert.Equal(t, []display.State{display.StateMicActive}, f.recorder.states)
}

func TestEngine_bothActiveWhileUserMutedIsSuppressedActive(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(cam1)
	f.engine.DeviceBecameUsed(mic1)
	f.engine.SetUserMuted(true)

	// Suppression is all or nothing; no partial suppressed state exists.
	assert.Equal(t, display.StateSuppressedActive, f.engine.CurrentState())
}

func TestEngine_nothingActiveWhileUserMutedIsSuppressedIdle(t *testing.T) {
	f := newFixture(allOn())

	f.engine.SetUserMuted(true)
	assert.Equal(t, display.StateSuppressedIdle, f.engine.CurrentState())

	f.engine.SetUserMuted(false)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())
}

func TestEngine_unmuteReflectsCurrentRawInputs(t *testing.T) {
	f := newFixture(allOn())

	f.engine.SetUserMuted(true)
	f.engine.DeviceBecameUsed(cam1)
	assert.Equal(t, display.StateSuppressedActive, f.engine.CurrentState())

	f.engine.SetUserMuted(false)
	assert.Equal(t, display.StateCameraActive, f.engine.CurrentState())
}

func TestEngine_conferenceMuteSuppressesMicrophoneOnly(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(mic1)
	f.engine.DeviceBecameUsed(cam1)
	f.engine.ConferenceRunningChanged(true)
	f.engine.ConferenceMuteChanged(true)

	// The camera signal is never touched by the conference override.
	assert.Equal(t, display.StateCameraActive, f.engine.CurrentState())

	f.engine.ConferenceMuteChanged(false)
	assert.Equal(t, display.StateBothActive, f.engine.CurrentState())
}

func TestEngine_conferenceMuteIsInertWhileAppNotRunning(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(mic1)
	f.engine.ConferenceMuteChanged(true)

	// The cached mute value has no effect without the app.
	assert.Equal(t, display.StateMicActive, f.engine.CurrentState())

	f.engine.ConferenceRunningChanged(true)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())

	f.engine.ConferenceRunningChanged(false)
	assert.Equal(t, display.StateMicActive, f.engine.CurrentState())
}

func TestEngine_noRedundantBroadcasts(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(cam1)
	assert.Equal(t, []display.State{display.StateCameraActive}, f.recorder.states)

	// The conference mute does not change the camera-only picture, so no
	// further notification goes out.
	f.engine.ConferenceRunningChanged(true)
	f.engine.ConferenceMuteChanged(true)
	f.engine.ConferenceMuteChanged(false)
	assert.Equal(t, []display.State{display.StateCameraActive}, f.recorder.states)
}

func TestEngine_disabledCameraMonitoringContributesFalse(t *testing.T) {
	options := allOn()
	options.MonitorCameras = false
	f := newFixture(options)

	f.engine.DeviceBecameUsed(cam1)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())

	f.engine.DeviceBecameUsed(mic1)
	assert.Equal(t, display.StateMicActive, f.engine.CurrentState())
}

func TestEngine_disabledMicrophoneMonitoringContributesFalse(t *testing.T) {
	options := allOn()
	options.MonitorMicrophones = false
	f := newFixture(options)

	f.engine.DeviceBecameUsed(mic1)
	f.engine.ConferenceRunningChanged(true)
	f.engine.ConferenceMuteChanged(true)

	assert.Equal(t, display.StateIdle, f.engine.CurrentState())
}

func TestEngine_cameraOffDebounceDropsGlitch(t *testing.T) {
	options := allOn()
	options.CameraOffDebounce = 5 * time.Second
	f := newFixture(options)

	inUse := cam1
	inUse.InUse = true
	f.snapshot = device.Devices{inUse}
	f.engine.DeviceBecameUsed(cam1)
	assert.Equal(t, []display.State{display.StateCameraActive}, f.recorder.states)

	// t=0: spurious stop. t=2: the camera is back. The deferred check at
	// t=5 sees it live and the transition produces zero observable
	// effects.
	f.engine.DeviceBecameUnused(cam1)
	f.clock.Advance(2 * time.Second)
	f.engine.DeviceBecameUsed(cam1)
	f.clock.Advance(10 * time.Second)

	assert.Equal(t, []display.State{display.StateCameraActive}, f.recorder.states)
	assert.Equal(t, display.StateCameraActive, f.engine.CurrentState())
}

func TestEngine_cameraOffDebounceFiresExactlyOnce(t *testing.T) {
	options := allOn()
	options.CameraOffDebounce = 5 * time.Second
	f := newFixture(options)

	inUse := cam1
	inUse.InUse = true
	f.snapshot = device.Devices{inUse}
	f.engine.DeviceBecameUsed(cam1)

	idle := cam1
	idle.InUse = false
	f.snapshot = device.Devices{idle}
	f.engine.DeviceBecameUnused(cam1)

	f.clock.Advance(4 * time.Second)
	assert.Equal(t, display.StateCameraActive, f.engine.CurrentState())

	f.clock.Advance(1 * time.Second)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())
	assert.Equal(t, []display.State{display.StateCameraActive, display.StateIdle}, f.recorder.states)

	f.clock.Advance(30 * time.Second)
	assert.Equal(t, []display.State{display.StateCameraActive, display.StateIdle}, f.recorder.states)
}

func TestEngine_zeroDebounceSignalsImmediately(t *testing.T) {
	f := newFixture(allOn())

	f.engine.DeviceBecameUsed(cam1)
	f.engine.DeviceBecameUnused(cam1)

	assert.Equal(t, []display.State{display.StateCameraActive, display.StateIdle}, f.recorder.states)
}

func TestEngine_microphoneUnusedReValidatesSnapshot(t *testing.T) {
	f := newFixture(allOn())

	mic2 := device.Device{ID: "mic2", Kind: device.KindMicrophone, Name: "Headset", InUse: true}
	f.snapshot = device.Devices{mic2}

	f.engine.DeviceBecameUsed(mic1)
	f.engine.DeviceBecameUnused(mic1)

	// Another microphone is still open, so the signal stays up.
	assert.Equal(t, display.StateMicActive, f.engine.CurrentState())

	f.snapshot = device.Devices{}
	f.engine.DeviceBecameUnused(mic2)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())
}

func TestEngine_unknownDeviceKindIsIgnored(t *testing.T) {
	f := newFixture(allOn())

	odd := device.Device{ID: "odd", Kind: device.Kind(99), Name: "Odd"}
	f.engine.DeviceBecameUsed(odd)
	f.engine.DeviceBecameUnused(odd)

	assert.Empty(t, f.recorder.states)
	assert.Equal(t, display.StateIdle, f.engine.CurrentState())
}

func TestEngine_recomputeIsPure(t *testing.T) {
	f := newFixture(allOn())
	f.engine.DeviceBecameUsed(mic1)

	first := f.engine.Recompute("test")
	assert.Equal(t, first, f.engine.Recompute("test"))
	assert.Equal(t, display.StateMicActive, first)
}
