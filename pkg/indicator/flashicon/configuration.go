package flashicon

import (
	"time"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

func NewConfiguration() Configuration {
	return Configuration{
		true,
		1 * time.Second,

		48,
		24,

		indicator.Color{R: 0, G: 200, B: 0, A: 255},
		indicator.Color{R: 255, G: 165, B: 0, A: 255},
		indicator.Color{R: 220, G: 0, B: 0, A: 255},
	}
}

type Configuration struct {
	Enabled bool `yaml:"enabled"`

	// Interval is the blink period. Zero makes the icon static: it stays
	// continuously visible while active, with no timer at all.
	Interval time.Duration `yaml:"interval" validate:"min=0"`

	Size   int `yaml:"size" validate:"gt=0"`
	Margin int `yaml:"margin" validate:"min=0"`

	CameraColor     indicator.Color `yaml:"cameraColor"`
	MicrophoneColor indicator.Color `yaml:"microphoneColor"`
	BothColor       indicator.Color `yaml:"bothColor"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("indicator.flashicon.enabled", "If true the flashing on-screen icon is shown while a device is in use.").
		Envar("OI_INDICATOR_FLASHICON_ENABLED").
		BoolVar(&this.Enabled)
	using.Flag("indicator.flashicon.interval", "Blink period of the icon. 0 makes the icon static.").
		Envar("OI_INDICATOR_FLASHICON_INTERVAL").
		DurationVar(&this.Interval)
	using.Flag("indicator.flashicon.size", "Edge length of the icon in pixels.").
		Envar("OI_INDICATOR_FLASHICON_SIZE").
		IntVar(&this.Size)
	using.Flag("indicator.flashicon.margin", "Distance of the icon from the screen corner in pixels.").
		Envar("OI_INDICATOR_FLASHICON_MARGIN").
		IntVar(&this.Margin)
}
