//go:build !windows

package device

import (
	"fmt"
	"runtime"
)

func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

type NativeProvider struct{}

func (this *NativeProvider) Initialize() error {
	return fmt.Errorf("no native device provider available on %s", runtime.GOOS)
}

func (this *NativeProvider) Dispose() error {
	return nil
}

func (this *NativeProvider) FindDevices() (Devices, error) {
	return nil, fmt.Errorf("no native device provider available on %s", runtime.GOOS)
}
