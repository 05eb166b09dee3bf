package app

import (
	"context"
	"os"
	"sync"

	"dario.cat/mergo"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/conference"
	"github.com/blaubaer/onair-indicator/pkg/device"
	"github.com/blaubaer/onair-indicator/pkg/display"
	"github.com/blaubaer/onair-indicator/pkg/engine"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
	"github.com/blaubaer/onair-indicator/pkg/indicator/border"
	"github.com/blaubaer/onair-indicator/pkg/indicator/flashicon"
	"github.com/blaubaer/onair-indicator/pkg/indicator/huelight"
	"github.com/blaubaer/onair-indicator/pkg/sched"
)

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

type App struct {
	// Provider yields device snapshots on demand. If absent the operating
	// system's native provider is used.
	Provider device.Provider

	// Source pushes device transitions. If absent a polling fallback on
	// top of Provider is used.
	Source device.Source

	Scheduler sched.Scheduler

	// OtherIndicators are registered in addition to the configured ones,
	// e.g. the menu bar icon owned by the main package.
	OtherIndicators []indicator.Indicator

	// Screens and NewSurface are the platform drawing collaborators of
	// the on-screen indicators. While absent those indicators stay off.
	Screens    indicator.Screens
	NewSurface indicator.SurfaceFactory

	// QueryConferenceMuted inspects the conferencing application's mute
	// control. While absent its state is never honored.
	QueryConferenceMuted func() (bool, error)

	ConfigurationFile string

	configFromFlags Configuration
	config          Configuration

	registry       indicator.Registry
	engine         *engine.Engine
	monitor        *conference.Monitor
	source         device.Source
	nativeProvider *device.NativeProvider
	refresher      sched.Handle
	started        bool
	mutex          sync.Mutex
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		StringVar(&this.ConfigurationFile)
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags); err != nil {
		return err
	}
	if err := this.config.validate(); err != nil {
		return err
	}

	if this.Scheduler == nil {
		this.Scheduler = sched.NewSystem()
	}
	if this.Provider == nil {
		this.nativeProvider = device.NewNativeProvider()
		if err := this.nativeProvider.Initialize(); err != nil {
			return err
		}
		this.Provider = this.nativeProvider
	}

	provider := device.ProviderFunc(this.findRelevantDevices)
	this.engine = engine.New(engine.Options{
		MonitorCameras:      this.config.MonitorCameras,
		MonitorMicrophones:  this.config.MonitorMicrophones,
		HonorConferenceMute: this.config.HonorConferenceMute,
		CameraOffDebounce:   this.config.CameraOffDebounce,
	}, provider, this.Scheduler, &this.registry)

	this.source = this.Source
	if this.source == nil {
		this.source = device.NewPollSource(provider, this.Scheduler, this.config.CheckInterval)
	}

	if this.config.HonorConferenceMute && this.QueryConferenceMuted != nil {
		this.monitor = &conference.Monitor{
			Probe:        conference.NewAppProbe(this.config.ConferenceProcessNames, this.QueryConferenceMuted),
			Scheduler:    this.Scheduler,
			PollInterval: this.config.ConferencePollInterval,
			OnMuteChanged: func(muted bool) error {
				this.engine.ConferenceMuteChanged(muted)
				return nil
			},
			OnRunningChanged: func(running bool) error {
				this.engine.ConferenceRunningChanged(running)
				return nil
			},
		}
	}

	for _, v := range this.OtherIndicators {
		this.RegisterIndicator(v)
	}
	this.registerConfiguredIndicators()

	if err := this.saveConf(false); err != nil {
		return err
	}

	success = true
	return nil
}

// RegisterIndicator adds another consumer of state transitions. It will
// observe every following broadcast in registration order.
func (this *App) RegisterIndicator(v indicator.Indicator) {
	this.registry.Register(v)
}

func (this *App) registerConfiguredIndicators() {
	if conf := this.config.Indicators.FlashIcon; conf.Enabled {
		if this.Screens == nil || this.NewSurface == nil {
			log.Debug("Flashing icon indicator is enabled, but no drawing backend is available; skipping it.")
		} else if v, err := this.newFlashIcon(conf); err != nil {
			log.WithError(err).
				Warn("Cannot initialize flashing icon indicator; continuing without it.")
		} else {
			this.RegisterIndicator(v)
		}
	}

	if conf := this.config.Indicators.Border; conf.Enabled {
		if this.Screens == nil || this.NewSurface == nil {
			log.Debug("Screen border indicator is enabled, but no drawing backend is available; skipping it.")
		} else if v, err := border.New(conf, this.Screens, this.NewSurface); err != nil {
			log.WithError(err).
				Warn("Cannot initialize screen border indicator; continuing without it.")
		} else {
			this.RegisterIndicator(v)
		}
	}

	if conf := this.config.Indicators.Hue; conf.Enabled {
		v := &huelight.HueLight{}
		if err := v.Initialize(&this.config.Indicators.Hue, this.alwaysSaveConf); err != nil {
			log.WithError(err).
				Warn("Cannot initialize hue indicator; continuing without it.")
		} else {
			this.RegisterIndicator(v)
		}
	}
}

func (this *App) newFlashIcon(conf flashicon.Configuration) (*flashicon.FlashIcon, error) {
	surface, err := this.NewSurface(indicator.Frame{})
	if err != nil {
		return nil, err
	}
	result, err := flashicon.New(conf, surface, this.Screens, this.Scheduler)
	if err != nil {
		_ = surface.Dispose()
		return nil, err
	}
	return result, nil
}

// Run starts all monitoring loops and blocks until the given context is
// done.
func (this *App) Run(ctx context.Context) error {
	if err := this.Start(); err != nil {
		return err
	}
	defer func() {
		_ = this.Stop()
	}()

	<-ctx.Done()
	log.Debug("Going down...")
	return nil
}

func (this *App) Start() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.started {
		return nil
	}

	this.engine.Broadcast("startup")

	if err := this.source.Start(device.Events{
		OnAdded: func(v device.Device) {
			log.With("device", v).Debug("Device appeared.")
		},
		OnRemoved: func(v device.Device) {
			log.With("device", v).Debug("Device disappeared.")
		},
		OnBecameUsed:   this.engine.DeviceBecameUsed,
		OnBecameUnused: this.engine.DeviceBecameUnused,
	}); err != nil {
		return err
	}

	if v := this.monitor; v != nil {
		if err := v.Start(); err != nil {
			_ = this.source.Stop()
			return err
		}
	}

	this.refresher = this.Scheduler.Every(this.config.RefreshInterval, this.refresh)

	this.started = true
	return nil
}

func (this *App) Stop() (rErr error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.started {
		return nil
	}

	if v := this.refresher; v != nil {
		v.Cancel()
		this.refresher = nil
	}
	if v := this.monitor; v != nil {
		if err := v.Stop(); err != nil && rErr == nil {
			rErr = err
		}
	}
	if err := this.source.Stop(); err != nil && rErr == nil {
		rErr = err
	}

	this.started = false
	return
}

func (this *App) refresh() {
	this.registry.BroadcastRefresh()
	this.engine.Broadcast("refresh")
}

// Mute asks all indicators to go dark until Unmute is called, no matter
// what the devices report meanwhile.
func (this *App) Mute() {
	this.engine.SetUserMuted(true)
}

func (this *App) Unmute() {
	this.engine.SetUserMuted(false)
}

// ToggleMute flips the user mute and reports the new value.
func (this *App) ToggleMute() bool {
	next := !this.engine.UserMuted()
	this.engine.SetUserMuted(next)
	return next
}

func (this *App) UserMuted() bool {
	return this.engine.UserMuted()
}

// CurrentDisplayState answers the on-demand query of presentation
// layers, e.g. for a tooltip.
func (this *App) CurrentDisplayState() display.State {
	return this.engine.CurrentState()
}

func (this *App) findRelevantDevices() (device.Devices, error) {
	all, err := this.Provider.FindDevices()
	if err != nil {
		return nil, err
	}

	result := make(device.Devices, 0, len(all))
	for _, candidate := range all {
		if this.isDeviceRelevant(candidate) {
			result = append(result, candidate)
		}
	}
	return result, nil
}

func (this *App) isDeviceRelevant(candidate device.Device) bool {
	if v := this.config.IncludedDeviceNames; v.HasContent() {
		if !v.MatchString(candidate.Name) {
			return false
		}
	}
	if v := this.config.ExcludedDeviceNames; v.HasContent() {
		if v.MatchString(candidate.Name) {
			return false
		}
	}
	return true
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
			// Ok, we should save...
		} else if err != nil {
			return err
		} else {
			// Does exist, skip...
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) Dispose() (rErr error) {
	defer func() {
		if v := this.nativeProvider; v != nil {
			if err := v.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
			this.nativeProvider = nil
		}
	}()

	if err := this.Stop(); err != nil && rErr == nil {
		rErr = err
	}

	this.registry.TeardownAll()
	return
}
