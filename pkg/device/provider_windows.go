//go:build windows

package device

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

// NewNativeProvider creates the Provider backed by the platform device
// stacks: Core Audio for microphones and the capability consent store for
// cameras. Initialize must be called before the first snapshot.
func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

type NativeProvider struct {
	initialized bool
	mutex       sync.RWMutex
}

func (this *NativeProvider) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.initialized {
		return nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("failed to initialize ole: %v", err)
	}

	this.initialized = true
	return nil
}

func (this *NativeProvider) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return nil
	}

	ole.CoUninitialize()
	this.initialized = false

	return nil
}

func (this *NativeProvider) FindDevices() (Devices, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if !this.initialized {
		return nil, fmt.Errorf("not initialized")
	}

	result, err := this.findMicrophones()
	if err != nil {
		return nil, err
	}

	cameras, err := findCameras()
	if err != nil {
		return nil, err
	}

	return append(result, cameras...), nil
}

func (this *NativeProvider) findMicrophones() (Devices, error) {
	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return nil, fmt.Errorf("cannot create IMMDeviceEnumerator instance: %w", err)
	}
	defer de.Release()

	return this.introspectMicrophonesOf(de)
}

func (this *NativeProvider) introspectMicrophonesOf(enumerator *wca.IMMDeviceEnumerator) (result Devices, _ error) {
	var collection *wca.IMMDeviceCollection
	if err := enumerator.EnumAudioEndpoints(wca.ECapture, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		return nil, fmt.Errorf("cannot query IMMDevices: %w", err)
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return nil, fmt.Errorf("cannot get count of IMMDevice collection: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		v, err := this.introspectMicrophoneOf(collection, i)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	return
}

func (this *NativeProvider) introspectMicrophoneOf(collection *wca.IMMDeviceCollection, deviceIndex uint32) (Device, error) {
	var captureDevice *wca.IMMDevice
	if err := collection.Item(deviceIndex, &captureDevice); err != nil {
		return Device{}, fmt.Errorf("cannot get item %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer captureDevice.Release()

	var propertyStore *wca.IPropertyStore
	if err := captureDevice.OpenPropertyStore(wca.STGM_READ, &propertyStore); err != nil {
		return Device{}, fmt.Errorf("cannot get properties of device %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer propertyStore.Release()

	var name wca.PROPVARIANT
	if err := propertyStore.GetValue(&wca.PKEY_Device_FriendlyName, &name); err != nil {
		return Device{}, fmt.Errorf("cannot get name of device %d of IMMDevice collection: %w", deviceIndex, err)
	}

	var id string
	if err := captureDevice.GetId(&id); err != nil {
		return Device{}, fmt.Errorf("cannot get id of device %d of IMMDevice collection: %w", deviceIndex, err)
	}

	var sessionManager *wca.IAudioSessionManager2
	if err := captureDevice.Activate(wca.IID_IAudioSessionManager2, wca.CLSCTX_ALL, nil, &sessionManager); err != nil {
		return Device{}, fmt.Errorf("cannot get session manager for device %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer sessionManager.Release()

	result := Device{
		ID:   id,
		Kind: KindMicrophone,
		Name: name.String(),
	}

	inUse, err := hasActiveSession(sessionManager, result)
	if err != nil {
		return Device{}, err
	}
	result.InUse = inUse

	return result, nil
}

func hasActiveSession(sessionManager *wca.IAudioSessionManager2, of Device) (bool, error) {
	var enumerator *wca.IAudioSessionEnumerator
	if err := sessionManager.GetSessionEnumerator(&enumerator); err != nil {
		return false, fmt.Errorf("cannot get audio sessions of device %v: %w", of, err)
	}
	defer enumerator.Release()

	var count int
	if err := enumerator.GetCount(&count); err != nil {
		return false, fmt.Errorf("cannot get count of audio sessions of device %v: %w", of, err)
	}

	for i := 0; i < count; i++ {
		active, err := isSessionActive(enumerator, i, of)
		if err != nil {
			return false, err
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

func isSessionActive(sessions *wca.IAudioSessionEnumerator, sessionIndex int, of Device) (bool, error) {
	var sessionControl *wca.IAudioSessionControl
	if err := sessions.GetSession(sessionIndex, &sessionControl); err != nil {
		return false, fmt.Errorf("cannot get audio session %d of device %v: %w", sessionIndex, of, err)
	}
	defer sessionControl.Release()

	dispatch, err := sessionControl.QueryInterface(wca.IID_IAudioSessionControl2)
	if err != nil {
		return false, fmt.Errorf("cannot get audio session control %d of device %v: %w", sessionIndex, of, err)
	}
	sessionControl2 := (*wca.IAudioSessionControl2)(unsafe.Pointer(dispatch))
	defer sessionControl2.Release()

	// Exclude system sound session
	if err := sessionControl2.IsSystemSoundsSession(); err == nil {
		return false, nil
	} else if err.Error() != "Incorrect function." {
		return false, fmt.Errorf("cannot determine if audio session %d of device %v is a system session or not: %w", sessionIndex, of, err)
	}

	var state uint32
	if err := sessionControl.GetState(&state); err != nil {
		return false, fmt.Errorf("cannot get state of audio session %d of device %v: %w", sessionIndex, of, err)
	}

	return state == 1, nil
}
