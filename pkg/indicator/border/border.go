package border

import (
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

// Border draws a static colored band around every attached screen while a
// device is in use. Four band surfaces per screen, sized by the configured
// thickness; Refresh rebuilds the set when the monitor configuration
// changed, keeping the current visibility.
type Border struct {
	conf       Configuration
	screens    indicator.Screens
	newSurface indicator.SurfaceFactory

	base     indicator.Base
	active   bool
	surfaces []indicator.Surface
	mutex    sync.Mutex
}

func New(conf Configuration, screens indicator.Screens, newSurface indicator.SurfaceFactory) (*Border, error) {
	if screens == nil {
		return nil, fmt.Errorf("no screens provider available")
	}
	if newSurface == nil {
		return nil, fmt.Errorf("no surface factory available")
	}

	result := &Border{
		conf:       conf,
		screens:    screens,
		newSurface: newSurface,
	}
	if err := result.rebuild(); err != nil {
		return nil, err
	}
	return result, nil
}

func (this *Border) Update(ctx indicator.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	state := ctx.State()
	this.active = state.Active() && !state.Suppressed()
	return this.apply()
}

func (this *Border) Refresh() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	wasVisible := this.base.Visible()
	if err := this.rebuild(); err != nil {
		return err
	}
	if wasVisible {
		return this.showAll()
	}
	return nil
}

func (this *Border) Mute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(true)
	return this.apply()
}

func (this *Border) Unmute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(false)
	return this.apply()
}

func (this *Border) Show() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.active = true
	return this.apply()
}

func (this *Border) Hide() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.active = false
	return this.apply()
}

func (this *Border) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if err := this.base.Apply(false, nil, this.hideAll); err != nil {
		log.WithError(err).
			Warn("Cannot hide border surfaces on dispose.")
	}
	return this.disposeAll()
}

// Visible reports the current logical visibility.
func (this *Border) Visible() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.base.Visible()
}

func (this *Border) apply() error {
	return this.base.Apply(this.active, this.showAll, this.hideAll)
}

func (this *Border) showAll() error {
	for i, v := range this.surfaces {
		if err := v.Show(); err != nil {
			return fmt.Errorf("cannot show border surface %d: %w", i, err)
		}
	}
	return nil
}

func (this *Border) hideAll() error {
	for i, v := range this.surfaces {
		if err := v.Hide(); err != nil {
			return fmt.Errorf("cannot hide border surface %d: %w", i, err)
		}
	}
	return nil
}

func (this *Border) rebuild() error {
	frames, err := this.screens.Frames()
	if err != nil {
		return fmt.Errorf("cannot determine screen frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no screen attached")
	}

	if err := this.disposeAll(); err != nil {
		return err
	}

	for _, frame := range frames {
		for _, band := range bandFrames(frame, this.conf.Thickness) {
			surface, err := this.newSurface(band)
			if err != nil {
				// Creation of later surfaces may still succeed, but a half
				// built border is worse than none.
				_ = this.disposeAll()
				return fmt.Errorf("cannot create border surface %v for screen %v: %w", band, frame, err)
			}
			if err := surface.SetColor(this.conf.Color); err != nil {
				_ = surface.Dispose()
				_ = this.disposeAll()
				return err
			}
			this.surfaces = append(this.surfaces, surface)
		}
	}
	return nil
}

// bandFrames cuts the border of the given screen into its top, bottom,
// left and right bands. The thickness is clamped so the bands never
// overlap; bands which end up with no area are omitted.
func bandFrames(screen indicator.Frame, thickness int) []indicator.Frame {
	t := thickness
	if limit := screen.Width / 2; t > limit {
		t = limit
	}
	if limit := screen.Height / 2; t > limit {
		t = limit
	}

	candidates := []indicator.Frame{
		{X: screen.X, Y: screen.Y, Width: screen.Width, Height: t},
		{X: screen.X, Y: screen.Y + screen.Height - t, Width: screen.Width, Height: t},
		{X: screen.X, Y: screen.Y + t, Width: t, Height: screen.Height - 2*t},
		{X: screen.X + screen.Width - t, Y: screen.Y + t, Width: t, Height: screen.Height - 2*t},
	}

	result := make([]indicator.Frame, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.IsZero() {
			result = append(result, candidate)
		}
	}
	return result
}

func (this *Border) disposeAll() (rErr error) {
	for i, v := range this.surfaces {
		if err := v.Dispose(); err != nil && rErr == nil {
			rErr = fmt.Errorf("cannot dispose border surface %d: %w", i, err)
		}
	}
	this.surfaces = nil
	return
}
