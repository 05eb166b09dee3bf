package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
)

type recordingIndicator struct {
	name string
	log  *[]string

	updateErr   error
	updatePanic bool

	lastState display.State
	disposed  bool
}

func (this *recordingIndicator) Update(ctx Context) error {
	*this.log = append(*this.log, this.name+":update")
	this.lastState = ctx.State()
	if this.updatePanic {
		panic("render failure")
	}
	return this.updateErr
}

func (this *recordingIndicator) Refresh() error {
	*this.log = append(*this.log, this.name+":refresh")
	return nil
}

func (this *recordingIndicator) Mute() error {
	*this.log = append(*this.log, this.name+":mute")
	return nil
}

func (this *recordingIndicator) Unmute() error {
	*this.log = append(*this.log, this.name+":unmute")
	return nil
}

func (this *recordingIndicator) Show() error { return nil }
func (this *recordingIndicator) Hide() error { return nil }

func (this *recordingIndicator) Dispose() error {
	this.disposed = true
	return nil
}

func TestRegistry_broadcastInRegistrationOrder(t *testing.T) {
	var calls []string
	a := &recordingIndicator{name: "a", log: &calls}
	b := &recordingIndicator{name: "b", log: &calls}
	c := &recordingIndicator{name: "c", log: &calls}

	instance := &Registry{}
	instance.Register(a)
	instance.Register(b)
	instance.Register(c)

	instance.BroadcastUpdate(NewContext(display.StateMicActive, nil))
	assert.Equal(t, []string{"a:update", "b:update", "c:update"}, calls)
}

func TestRegistry_isolatesFailingIndicator(t *testing.T) {
	var calls []string
	a := &recordingIndicator{name: "a", log: &calls}
	b := &recordingIndicator{name: "b", log: &calls, updateErr: assert.AnError}
	c := &recordingIndicator{name: "c", log: &calls}

	instance := &Registry{}
	instance.Register(a)
	instance.Register(b)
	instance.Register(c)

	instance.BroadcastUpdate(NewContext(display.StateBothActive, nil))

	assert.Equal(t, []string{"a:update", "b:update", "c:update"}, calls)
	assert.Equal(t, display.StateBothActive, a.lastState)
	assert.Equal(t, display.StateBothActive, c.lastState)
}

func TestRegistry_isolatesPanickingIndicator(t *testing.T) {
	var calls []string
	a := &recordingIndicator{name: "a", log: &calls}
	b := &recordingIndicator{name: "b", log: &calls, updatePanic: true}
	c := &recordingIndicator{name: "c", log: &calls}

	instance := &Registry{}
	instance.Register(a)
	instance.Register(b)
	instance.Register(c)

	instance.BroadcastUpdate(NewContext(display.StateCameraActive, nil))

	assert.Equal(t, []string{"a:update", "b:update", "c:update"}, calls)
	assert.Equal(t, display.StateCameraActive, c.lastState)
}

func TestRegistry_muteAndUnmuteReachEveryone(t *testing.T) {
	var calls []string
	a := &recordingIndicator{name: "a", log: &calls}
	b := &recordingIndicator{name: "b", log: &calls}

	instance := &Registry{}
	instance.Register(a)
	instance.Register(b)

	instance.BroadcastMute()
	instance.BroadcastUnmute()
	assert.Equal(t, []string{"a:mute", "b:mute", "a:unmute", "b:unmute"}, calls)
}

func TestRegistry_teardownDisposesAndClears(t *testing.T) {
	var calls []string
	a := &recordingIndicator{name: "a", log: &calls}
	b := &recordingIndicator{name: "b", log: &calls}

	instance := &Registry{}
	instance.Register(a)
	instance.Register(b)

	instance.TeardownAll()
	assert.True(t, a.disposed)
	assert.True(t, b.disposed)
	assert.Equal(t, 0, instance.Len())

	// After teardown a broadcast reaches nobody.
	instance.BroadcastUpdate(NewContext(display.StateIdle, nil))
	assert.Empty(t, calls)
}

func TestContext_devices(t *testing.T) {
	ctx := NewContext(display.StateMicActive, device.Devices{
		{ID: "mic1", Kind: device.KindMicrophone, Name: "Mic", InUse: true},
		{ID: "cam1", Kind: device.KindCamera, Name: "Cam", InUse: true},
	})

	var names []string
	for v, err := range ctx.Devices() {
		assert.NoError(t, err)
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"Mic", "Cam"}, names)

	// The enumeration can be consumed more than once.
	count := 0
	for range ctx.Devices() {
		count++
	}
	assert.Equal(t, 2, count)
}
