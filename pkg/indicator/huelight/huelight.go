package huelight

import (
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/onair-indicator/pkg/common"
	"github.com/blaubaer/onair-indicator/pkg/credentials"
	"github.com/blaubaer/onair-indicator/pkg/indicator"
)

const appName = "github.com/blaubaer/onair-indicator"

// HueLight switches Philips Hue lights/groups on while a device is in
// use and off otherwise. Refresh rediscovers the lights; the mute flag
// forces them off like any other indicator hides itself.
type HueLight struct {
	conf         *Configuration
	saveConfFunc func() error

	lights      []huego.Light
	groups      []huego.Group
	credentials credentials.Credentials

	base   indicator.Base
	active bool
	mutex  sync.Mutex
}

func (this *HueLight) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	v, err := this.resolveCredentials()
	if err != nil {
		return err
	}
	this.credentials = v

	return this.Refresh()
}

func (this *HueLight) Update(ctx indicator.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	state := ctx.State()
	this.active = state.Active() && !state.Suppressed()
	return this.apply()
}

// Refresh rediscovers the lights and groups matching the configured name
// pattern. For this indicator "geometry" is the set of bulbs, which the
// user may rename or extend at any time.
func (this *HueLight) Refresh() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	lights, err := this.discoverLights(bridge)
	if err != nil {
		return err
	}
	groups, err := this.discoverGroups(bridge)
	if err != nil {
		return err
	}

	this.lights = lights
	this.groups = groups

	return nil
}

func (this *HueLight) Mute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(true)
	return this.apply()
}

func (this *HueLight) Unmute() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.base.SetMuted(false)
	return this.apply()
}

func (this *HueLight) Show() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.active = true
	return this.apply()
}

func (this *HueLight) Hide() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.active = false
	return this.apply()
}

func (this *HueLight) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if err := this.base.Apply(false, nil, this.switchOff); err != nil {
		log.WithError(err).
			Warn("Cannot switch off hue lights on dispose.")
	}

	this.conf = nil
	this.saveConfFunc = nil
	return nil
}

func (this *HueLight) apply() error {
	return this.base.Apply(this.active, this.switchOn, this.switchOff)
}

func (this *HueLight) switchOn() error {
	return this.ensure(true)
}

func (this *HueLight) switchOff() error {
	return this.ensure(false)
}

func (this *HueLight) ensure(on bool) error {
	bridge, err := this.bridge()
	if err != nil {
		return err
	}
	if err := this.ensureLights(bridge, on); err != nil {
		return err
	}
	return this.ensureGroups(bridge, on)
}

func (this *HueLight) ensureLights(bridge *huego.Bridge, on bool) error {
	for i, v := range this.lights {
		if newState, err := this.ensureState(on, v.State); err != nil {
			return err
		} else if newState != nil {
			if _, err := bridge.SetLightState(v.ID, *newState); err != nil {
				return fmt.Errorf("cannot switch hue light %q#%d: %w", v.Name, v.ID, err)
			}
			v.State = &(*newState)
		}
		this.lights[i] = v
	}
	return nil
}

func (this *HueLight) ensureGroups(bridge *huego.Bridge, on bool) error {
	for i, v := range this.groups {
		if newState, err := this.ensureState(on, v.State); err != nil {
			return err
		} else if newState != nil {
			if _, err := bridge.SetLightState(v.ID, *newState); err != nil {
				return fmt.Errorf("cannot switch hue group %q#%d: %w", v.Name, v.ID, err)
			}
			v.State = &(*newState)
		}
		this.groups[i] = v
	}
	return nil
}

func (this *HueLight) ensureState(on bool, hueState *huego.State) (*huego.State, error) {
	if on {
		if !hueState.On || hueState.Bri != this.conf.Brightness || hueState.Hue != this.conf.Hue || hueState.Sat != this.conf.Saturation {
			return &huego.State{
				On:  true,
				Bri: this.conf.Brightness,
				Hue: this.conf.Hue,
				Sat: this.conf.Saturation,

				Ct: 0,
			}, nil
		}
		return nil, nil
	}

	if hueState.On {
		return &huego.State{
			On: false,
		}, nil
	}
	return nil, nil
}

func (this *HueLight) discoverLights(bridge *huego.Bridge) (result []huego.Light, _ error) {
	if this.conf.Kinds.Has(KindLight) {
		candidates, err := bridge.GetLights()
		if err != nil {
			return nil, fmt.Errorf("cannot discover lights of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *HueLight) discoverGroups(bridge *huego.Bridge) (result []huego.Group, _ error) {
	if this.conf.Kinds.Has(KindGroup) {
		candidates, err := bridge.GetGroups()
		if err != nil {
			return nil, fmt.Errorf("cannot discover groups of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *HueLight) bridge() (*huego.Bridge, error) {
	v := this.credentials
	if v.IsZero() {
		return nil, fmt.Errorf("not paired with hue bridge")
	}
	return huego.New(v.HueBridge, v.HueUser), nil
}

func (this *HueLight) resolveCredentials() (credentials.Credentials, error) {
	if u := this.conf.User; u != "" {
		bridge, err := this.discoverBridge()
		if err != nil {
			return credentials.Credentials{}, err
		}

		return credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   u,
		}, nil
	}

	if this.conf.Pair {
		return this.pair()
	}

	v, err := this.readCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}

	if !v.IsZero() {
		return v, nil
	}

	return this.pair()
}

func (this *HueLight) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	bridge, err := huego.Discover()
	if err == nil {
		return bridge, nil
	}

	log.WithError(err).
		Info("Cannot discover a hue bridge automatically.")

	var host string
	if pErr := common.RequestStringContentIfRequiredFromTerminal(&host, "Hue bridge host", false, false); pErr != nil {
		return nil, fmt.Errorf("cannot discover hue bridge: %w", err)
	}
	return &huego.Bridge{Host: host}, nil
}

func (this *HueLight) pair() (credentials.Credentials, error) {
	bridge, err := this.discoverBridge()
	if err != nil {
		return credentials.Credentials{}, err
	}

	for {
		log.Info("Wait for hue link button been pressed...")
		user, err := bridge.CreateUser(appName)
		if apiErr, ok := common.AsError[*huego.APIError](err); ok && apiErr.Type == 101 {
			time.Sleep(1 * time.Second)
			continue
		} else if err != nil {
			return credentials.Credentials{}, fmt.Errorf("was not able to pair with %s: %w", bridge.Host, err)
		}

		v := credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   user,
		}

		if err := this.storeCredentials(v); err != nil {
			log.WithError(err).
				Warn("Cannot store credentials. The app will work now, but next time the pairing might be required again.")
		}

		log.With("bridge", bridge.Host).
			Info("Successful paired.")
		return v, nil
	}
}

func (this *HueLight) readCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.HueBridge == "" {
		v.HueBridge = this.conf.Bridge
	}
	if v.HueUser == "" {
		v.HueUser = this.conf.User
	}

	return v, nil
}

func (this *HueLight) storeCredentials(v credentials.Credentials) error {
	supported, err := v.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Bridge = v.HueBridge
	this.conf.User = v.HueUser
	if this.saveConfFunc == nil {
		return nil
	}
	return this.saveConfFunc()
}
