package app

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

type fakeSource struct {
	events  device.Events
	started bool
	stopped bool
}

func (this *fakeSource) Start(events device.Events) error {
	this.events = events
	this.started = true
	return nil
}

func (this *fakeSource) Stop() error {
	this.stopped = true
	return nil
}

type stateRecorder struct {
	states []display.State
	mutex  sync.Mutex
}

func (this *stateRecorder) Update(ctx indicator.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.states = append(this.states, ctx.State())
	return nil
}

func (this *stateRecorder) Refresh() error { return nil }
func (this *stateRecorder) Mute() error    { return nil }
func (this *stateRecorder) Unmute() error  { return nil }
func (this *stateRecorder) Show() error    { return nil }
func (this *stateRecorder) Hide() error    { return nil }
func (this *stateRecorder) Dispose() error { return nil }

func (this *stateRecorder) recorded() []display.State {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]display.State(nil), this.states...)
}

func newTestApp(t *testing.T, snapshot *device.Devices) (*App, *fakeSource, *stateRecorder) {
	source := &fakeSource{}
	recorder := &stateRecorder{}

	instance := NewApp()
	instance.ConfigurationFile = filepath.Join(t.TempDir(), "configuration.yml")
	instance.Provider = device.ProviderFunc(func() (device.Devices, error) {
		return *snapshot, nil
	})
	instance.Source = source
	instance.Scheduler = sched.NewManual()
	instance.OtherIndicators = []indicator.Indicator{recorder}
	instance.configFromFlags.PreventAutoSave = true

	require.NoError(t, instance.Initialize())
	t.Cleanup(func() {
		_ = instance.Dispose()
	})

	return instance, source, recorder
}

func TestApp_startBroadcastsInitialStateAndWiresSource(t *testing.T) {
	snapshot := device.Devices{}
	instance, source, recorder := newTestApp(t, &snapshot)

	require.NoError(t, instance.Start())

	assert.True(t, source.started)
	assert.Equal(t, []display.State{display.StateIdle}, recorder.recorded())

	cam := device.Device{ID: "cam-1", Kind: device.KindCamera, Name: "Webcam", InUse: true}
	snapshot = device.Devices{cam}
	source.events.OnBecameUsed(cam)

	assert.Equal(t, display.StateCameraActive, instance.CurrentDisplayState())
	assert.Equal(t, []display.State{display.StateIdle, display.StateCameraActive}, recorder.recorded())
}

func TestApp_stopIsIdempotentAndStopsTheSource(t *testing.T) {
	snapshot := device.Devices{}
	instance, source, _ := newTestApp(t, &snapshot)

	require.NoError(t, instance.Start())
	require.NoError(t, instance.Stop())
	require.NoError(t, instance.Stop())

	assert.True(t, source.stopped)
}

func TestApp_toggleMuteFlipsAndReports(t *testing.T) {
	snapshot := device.Devices{}
	instance, _, recorder := newTestApp(t, &snapshot)
	require.NoError(t, instance.Start())

	assert.True(t, instance.ToggleMute())
	assert.True(t, instance.UserMuted())
	assert.Equal(t, display.StateSuppressedIdle, instance.CurrentDisplayState())

	assert.False(t, instance.ToggleMute())
	assert.False(t, instance.UserMuted())

	assert.Equal(t, []display.State{
		display.StateIdle,
		display.StateSuppressedIdle,
		display.StateIdle,
	}, recorder.recorded())
}

func TestApp_deviceNameFiltersApply(t *testing.T) {
	snapshot := device.Devices{
		{ID: "cam-1", Kind: device.KindCamera, Name: "OBS Virtual Camera", InUse: true},
		{ID: "mic-1", Kind: device.KindMicrophone, Name: "Desk Microphone", InUse: true},
	}
	instance, _, _ := newTestApp(t, &snapshot)
	instance.config.ExcludedDeviceNames = common.MustNewRegexp(`(?i)virtual`)

	actual, err := instance.findRelevantDevices()

	require.NoError(t, err)
	require.Len(t, actual, 1)
	assert.Equal(t, "mic-1", actual[0].ID)
}

func TestApp_includeFilterWinsBeforeExclude(t *testing.T) {
	snapshot := device.Devices{
		{ID: "mic-1", Kind: device.KindMicrophone, Name: "Desk Microphone", InUse: true},
		{ID: "mic-2", Kind: device.KindMicrophone, Name: "Headset", InUse: false},
	}
	instance, _, _ := newTestApp(t, &snapshot)
	instance.config.IncludedDeviceNames = common.MustNewRegexp(`^Desk`)

	actual, err := instance.findRelevantDevices()

	require.NoError(t, err)
	require.Len(t, actual, 1)
	assert.Equal(t, "mic-1", actual[0].ID)
}

func TestApp_configurationFilePrefersExplicitOne(t *testing.T) {
	instance := NewApp()
	instance.ConfigurationFile = "/tmp/other.yml"

	assert.Equal(t, "/tmp/other.yml", instance.configurationFile())

	instance.ConfigurationFile = ""
	assert.NotEmpty(t, instance.configurationFile())
}
