package indicator

import (
	"iter"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
)

// Indicator is any visual presentation element driven by the aggregation:
// a menu bar entry, a flashing on-screen marker, a screen border, a light.
// Implementations decide their own rendering; failures in one must never
// reach another (the Registry enforces that at dispatch time).
type Indicator interface {
	// Update reacts to the current combined state carried by ctx. It
	// decides hidden vs. visible and any secondary attribute such as
	// color, text or blink state.
	Update(ctx Context) error

	// Refresh recomputes geometry and placement after the screen
	// configuration changed. It must not change visibility.
	Refresh() error

	// Mute forces the indicator hidden regardless of activity until
	// Unmute is called.
	Mute() error

	// Unmute clears the mute and re-evaluates visibility.
	Unmute() error

	// Show and Hide are idempotent.
	Show() error
	Hide() error

	// Dispose releases any on-screen resource. The indicator owns those
	// resources; the registry only owns the dispatch list.
	Dispose() error
}

// Context is handed to Update. Its devices enumeration lists what is
// currently in use, for indicators which render device names.
type Context interface {
	State() display.State
	Devices() iter.Seq2[*device.Device, error]
}

func NewContext(state display.State, devices device.Devices) Context {
	buf := make([]*device.Device, len(devices))
	for i := range devices {
		buf[i] = &devices[i]
	}
	return &plainContext{state, buf}
}

type plainContext struct {
	state   display.State
	devices []*device.Device
}

func (this *plainContext) State() display.State {
	return this.state
}

func (this *plainContext) Devices() iter.Seq2[*device.Device, error] {
	return common.Iter2Err(this.devices...)
}
