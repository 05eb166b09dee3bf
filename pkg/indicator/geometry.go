package indicator

import "fmt"

// Frame is a rectangle in global screen coordinates.
type Frame struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (this Frame) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", this.Width, this.Height, this.X, this.Y)
}

func (this Frame) IsZero() bool {
	return this.Width <= 0 || this.Height <= 0
}

// Color is an RGBA value an indicator paints its surface with. Instances
// are plain values; every indicator gets its own copy at construction
// time, nothing is shared or mutated in place.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

// Screens tells where the attached displays are. On-screen indicators ask
// it again on Refresh after the monitor configuration changed.
type Screens interface {
	Frames() ([]Frame, error)
}

// Surface is the drawable an on-screen indicator owns: an OS window or
// overlay layer. Creating one can fail (no display available); a failed
// creation means the indicator is simply not registered.
type Surface interface {
	Show() error
	Hide() error
	Move(Frame) error
	SetColor(Color) error
	Dispose() error
}

// SurfaceFactory creates a Surface covering the given frame.
type SurfaceFactory func(Frame) (Surface, error)
