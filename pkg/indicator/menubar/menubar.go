package menubar

import (
	"fmt"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

// Icons carries one tray icon per display state family.
type Icons struct {
	Idle       []byte
	Camera     []byte
	Microphone []byte
	Both       []byte
	Suppressed []byte
}

func (this Icons) validate() error {
	for _, candidate := range []struct {
		name string
		data []byte
	}{
		{"Idle", this.Idle},
		{"Camera", this.Camera},
		{"Microphone", this.Microphone},
		{"Both", this.Both},
		{"Suppressed", this.Suppressed},
	} {
		if len(candidate.data) == 0 {
			return fmt.Errorf("icon %s is empty", candidate.name)
		}
	}
	return nil
}

// Menubar drives the tray icon and its tooltip. The tray item cannot
// vanish while the process runs, so its hidden rendering is the idle
// icon; the muted rendering is the suppressed icon.
type Menubar struct {
	Icons Icons

	muted     bool
	lastState display.State
	mutex     sync.Mutex
}

func (this *Menubar) Initialize() error {
	return this.Icons.validate()
}

func (this *Menubar) Update(ctx indicator.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.lastState = ctx.State()

	var names []string
	for v, err := range ctx.Devices() {
		if err != nil {
			return err
		}
		names = append(names, v.Name)
	}

	return this.render(names)
}

func (this *Menubar) render(deviceNames []string) error {
	state := this.lastState
	if this.muted && !state.Suppressed() {
		// The global mute reached us before the aggregation rebroadcast.
		state = display.StateSuppressedIdle
	}

	systray.SetIcon(this.icon(state))
	systray.SetTooltip(this.tooltip(state, deviceNames))
	return nil
}

func (this *Menubar) icon(state display.State) []byte {
	switch state {
	case display.StateCameraActive:
		return this.Icons.Camera
	case display.StateMicActive:
		return this.Icons.Microphone
	case display.StateBothActive:
		return this.Icons.Both
	case display.StateSuppressedActive, display.StateSuppressedIdle:
		return this.Icons.Suppressed
	default:
		return this.Icons.Idle
	}
}

func (this *Menubar) tooltip(state display.State, deviceNames []string) string {
	switch state {
	case display.StateCameraActive:
		return this.tooltipWithDevices("Camera is in use", deviceNames)
	case display.StateMicActive:
		return this.tooltipWithDevices("Microphone is in use", deviceNames)
	case display.StateBothActive:
		return this.tooltipWithDevices("Camera and microphone are in use", deviceNames)
	case display.StateSuppressedActive:
		return "Indicators muted (devices are in use)"
	case display.StateSuppressedIdle:
		return "Indicators muted"
	default:
		return "No capture device is in use"
	}
}

func (this *Menubar) tooltipWithDevices(headline string, deviceNames []string) string {
	if len(deviceNames) == 0 {
		return headline
	}
	return fmt.Sprintf("%s:\n%s", headline, strings.Join(deviceNames, "\n"))
}

func (this *Menubar) Refresh() error {
	// The tray placement is owned by the OS.
	return nil
}

func (this *Menubar) Mute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.muted = true
	return this.render(nil)
}

func (this *Menubar) Unmute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.muted = false
	return this.render(nil)
}

func (this *Menubar) Show() error {
	return nil
}

func (this *Menubar) Hide() error {
	return nil
}

func (this *Menubar) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.muted = false
	this.lastState = display.StateIdle
	return this.render(nil)
}
