package border

import (
	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

func NewConfiguration() Configuration {
	return Configuration{
		false,
		6,
		indicator.Color{R: 220, G: 0, B: 0, A: 220},
	}
}

type Configuration struct {
	Enabled bool `yaml:"enabled"`

	// Thickness of the border band in pixels.
	Thickness int `yaml:"thickness" validate:"gt=0"`

	Color indicator.Color `yaml:"color"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("indicator.border.enabled", "If true a colored border is drawn around every screen while a device is in use.").
		Envar("OI_INDICATOR_BORDER_ENABLED").
		BoolVar(&this.Enabled)
	using.Flag("indicator.border.thickness", "Thickness of the border band in pixels.").
		Envar("OI_INDICATOR_BORDER_THICKNESS").
		IntVar(&this.Thickness)
}
