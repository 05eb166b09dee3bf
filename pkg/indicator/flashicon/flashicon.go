package flashicon

import (
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

// FlashIcon is the on-screen usage marker. With a blink interval it
// toggles its surface on a timer while active; with interval zero it is
// static and never owns a timer. The presence of the running timer is
// what distinguishes the two modes.
type FlashIcon struct {
	conf      Configuration
	surface   indicator.Surface
	screens   indicator.Screens
	scheduler sched.Scheduler

	base         indicator.Base
	lastActive   bool
	timer        sched.Handle
	surfaceShown bool
	mutex        sync.Mutex
}

func New(conf Configuration, surface indicator.Surface, screens indicator.Screens, scheduler sched.Scheduler) (*FlashIcon, error) {
	if surface == nil {
		return nil, fmt.Errorf("no surface available")
	}
	if screens == nil {
		return nil, fmt.Errorf("no screens provider available")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("no scheduler available")
	}

	result := &FlashIcon{
		conf:      conf,
		surface:   surface,
		screens:   screens,
		scheduler: scheduler,
	}
	if err := result.place(); err != nil {
		return nil, err
	}
	return result, nil
}

func (this *FlashIcon) Update(ctx indicator.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	state := ctx.State()
	if active := state.Active() && !state.Suppressed(); active != this.lastActive {
		this.lastActive = active
	}

	if err := this.surface.SetColor(this.color(state)); err != nil {
		return err
	}

	return this.apply()
}

func (this *FlashIcon) color(state display.State) indicator.Color {
	switch state {
	case display.StateMicActive:
		return this.conf.MicrophoneColor
	case display.StateBothActive:
		return this.conf.BothColor
	default:
		return this.conf.CameraColor
	}
}

func (this *FlashIcon) Refresh() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.place()
}

func (this *FlashIcon) place() error {
	frames, err := this.screens.Frames()
	if err != nil {
		return fmt.Errorf("cannot determine screen frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no screen attached")
	}

	// Upper right corner of the primary screen.
	primary := frames[0]
	return this.surface.Move(indicator.Frame{
		X:      primary.X + primary.Width - this.conf.Size - this.conf.Margin,
		Y:      primary.Y + this.conf.Margin,
		Width:  this.conf.Size,
		Height: this.conf.Size,
	})
}

func (this *FlashIcon) Mute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(true)
	return this.apply()
}

func (this *FlashIcon) Unmute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(false)
	return this.apply()
}

func (this *FlashIcon) Show() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.lastActive = true
	return this.apply()
}

func (this *FlashIcon) Hide() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.lastActive = false
	return this.apply()
}

func (this *FlashIcon) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if err := this.base.Apply(false, nil, this.deactivate); err != nil {
		log.WithError(err).
			Warn("Cannot hide the flash icon on dispose.")
	}
	return this.surface.Dispose()
}

// Visible reports whether the marker currently counts as shown. For the
// blinking mode this is the logical state, not the momentary blink phase.
func (this *FlashIcon) Visible() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.base.Visible()
}

// Blinking reports whether the blink timer is currently running.
func (this *FlashIcon) Blinking() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.timer != nil
}

func (this *FlashIcon) apply() error {
	return this.base.Apply(this.lastActive, this.activate, this.deactivate)
}

func (this *FlashIcon) activate() error {
	if err := this.showSurface(); err != nil {
		return err
	}
	if this.conf.Interval > 0 && this.timer == nil {
		this.timer = this.scheduler.Every(this.conf.Interval, this.blink)
	}
	return nil
}

func (this *FlashIcon) deactivate() error {
	if this.timer != nil {
		this.timer.Cancel()
		this.timer = nil
	}
	return this.hideSurface()
}

func (this *FlashIcon) blink() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.timer == nil {
		return
	}

	var err error
	if this.surfaceShown {
		err = this.hideSurface()
	} else {
		err = this.showSurface()
	}
	if err != nil {
		log.WithError(err).
			Warn("Cannot toggle flash icon surface. Next blink will retry.")
	}
}

func (this *FlashIcon) showSurface() error {
	if this.surfaceShown {
		return nil
	}
	if err := this.surface.Show(); err != nil {
		return err
	}
	this.surfaceShown = true
	return nil
}

func (this *FlashIcon) hideSurface() error {
	if !this.surfaceShown {
		return nil
	}
	if err := this.surface.Hide(); err != nil {
		return err
	}
	this.surfaceShown = false
	return nil
}
