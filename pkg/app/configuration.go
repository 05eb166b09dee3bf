package app

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/conference"
	"github.com/blaubaer/onair-indicator/pkg/indicator/border"
	"github.com/blaubaer/onair-indicator/pkg/indicator/flashicon"
	"github.com/blaubaer/onair-indicator/pkg/indicator/huelight"
)

func NewConfiguration() Configuration {
	return Configuration{
		false,

		true,
		true,
		true,
		5 * time.Second,

		conference.DefaultPollInterval,
		[]string{"Zoom.exe", "zoom.us", "Zoom"},

		5 * time.Second,
		5 * time.Minute,

		common.Regexp{},
		common.Regexp{},

		IndicatorsConfiguration{
			FlashIcon: flashicon.NewConfiguration(),
			Border:    border.NewConfiguration(),
			Hue:       huelight.NewConfiguration(),
		},
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	MonitorCameras      bool          `yaml:"monitorCameras"`
	MonitorMicrophones  bool          `yaml:"monitorMicrophones"`
	HonorConferenceMute bool          `yaml:"honorConferenceMute"`
	CameraOffDebounce   time.Duration `yaml:"cameraOffDebounce" validate:"min=0"`

	ConferencePollInterval time.Duration `yaml:"conferencePollInterval,omitempty" validate:"gt=0"`
	ConferenceProcessNames []string      `yaml:"conferenceProcessNames,omitempty"`

	CheckInterval   time.Duration `yaml:"checkInterval,omitempty" validate:"gt=0"`
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty" validate:"gt=0"`

	IncludedDeviceNames common.Regexp `yaml:"includedDeviceNames,omitempty"`
	ExcludedDeviceNames common.Regexp `yaml:"excludedDeviceNames,omitempty"`

	Indicators IndicatorsConfiguration `yaml:"indicators,omitempty"`
}

type IndicatorsConfiguration struct {
	FlashIcon flashicon.Configuration `yaml:"flashIcon,omitempty"`
	Border    border.Configuration    `yaml:"border,omitempty"`
	Hue       huelight.Configuration  `yaml:"hue,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("OI_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("monitorCameras", "If true camera usage contributes to the displayed state.").
		Envar("OI_MONITOR_CAMERAS").
		BoolVar(&this.MonitorCameras)
	using.Flag("monitorMicrophones", "If true microphone usage contributes to the displayed state.").
		Envar("OI_MONITOR_MICROPHONES").
		BoolVar(&this.MonitorMicrophones)
	using.Flag("honorConferenceMute", "If true the conferencing application's mute control suppresses the microphone signal while that application is running.").
		Envar("OI_HONOR_CONFERENCE_MUTE").
		BoolVar(&this.HonorConferenceMute)
	using.Flag("cameraOffDebounce", "How long a camera-stopped report is held back before it is believed. 0 disables the debounce.").
		Envar("OI_CAMERA_OFF_DEBOUNCE").
		DurationVar(&this.CameraOffDebounce)
	using.Flag("conferencePollInterval", "How often the conferencing application's mute control is polled while it is running.").
		Envar("OI_CONFERENCE_POLL_INTERVAL").
		DurationVar(&this.ConferencePollInterval)
	using.Flag("conferenceProcessNames", "Process names under which the conferencing application can appear.").
		Envar("OI_CONFERENCE_PROCESS_NAMES").
		StringsVar(&this.ConferenceProcessNames)
	using.Flag("checkInterval", "How often the device usage is checked.").
		Envar("OI_CHECK_INTERVAL").
		DurationVar(&this.CheckInterval)
	using.Flag("refreshInterval", "How often the whole setup should be refreshed.").
		Envar("OI_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)
	using.Flag("includedDeviceNames", "Which device names should be respected for evaluation.").
		Envar("OI_INCLUDED_DEVICE_NAMES").
		SetValue(&this.IncludedDeviceNames)
	using.Flag("excludedDeviceNames", "Which device names should not be respected for evaluation.").
		Envar("OI_EXCLUDED_DEVICE_NAMES").
		SetValue(&this.ExcludedDeviceNames)

	this.Indicators.FlashIcon.SetupConfiguration(using)
	this.Indicators.Border.SetupConfiguration(using)
	this.Indicators.Hue.SetupConfiguration(using)
}

func (this *Configuration) validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(this); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func defaultConfigurationFile() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		fs, err := os.Stat(appData)
		if err == nil && fs.IsDir() {
			return filepath.Join(appData, "onair-indicator", "configuration.yml")
		}
	}

	if v, err := os.UserConfigDir(); err == nil {
		return filepath.Join(v, "onair-indicator", "configuration.yml")
	}

	u, err := user.Current()
	if err != nil {
		return "configuration.yml"
	}

	return filepath.Join(u.HomeDir, ".config", "onair-indicator", "configuration.yml")
}
