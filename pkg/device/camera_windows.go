//go:build windows

package device

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// Windows does not expose a camera session API comparable to Core Audio.
// The capability consent store tracks per-application usage timestamps
// instead: an app currently holding the webcam has LastUsedTimeStop == 0.
const webcamConsentStoreKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\CapabilityAccessManager\ConsentStore\webcam`

func findCameras() (Devices, error) {
	inUse, err := anyWebcamConsumerActive()
	if err != nil {
		return nil, err
	}

	// The consent store tells usage, not hardware identity. One logical
	// camera device is reported representing the store.
	return Devices{{
		ID:    "webcam",
		Kind:  KindCamera,
		Name:  "Webcam",
		InUse: inUse,
	}}, nil
}

func anyWebcamConsumerActive() (bool, error) {
	root, err := registry.OpenKey(registry.CURRENT_USER, webcamConsentStoreKey, registry.READ)
	if err == registry.ErrNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot open webcam consent store: %w", err)
	}
	defer func() {
		_ = root.Close()
	}()

	consumers, err := collectConsumerKeys(root)
	if err != nil {
		return false, err
	}

	for _, consumer := range consumers {
		active, err := isConsumerActive(root, consumer)
		if err != nil {
			return false, err
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

func collectConsumerKeys(root registry.Key) ([]string, error) {
	names, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate webcam consent store: %w", err)
	}

	var result []string
	for _, name := range names {
		if name != "NonPackaged" {
			result = append(result, name)
			continue
		}

		// Classic desktop apps live one level deeper.
		nonPackaged, err := registry.OpenKey(root, name, registry.READ)
		if err != nil {
			continue
		}
		children, err := nonPackaged.ReadSubKeyNames(-1)
		_ = nonPackaged.Close()
		if err != nil {
			continue
		}
		for _, child := range children {
			result = append(result, path.Join(name, child))
		}
	}
	return result, nil
}

func isConsumerActive(root registry.Key, consumer string) (bool, error) {
	k, err := registry.OpenKey(root, strings.ReplaceAll(consumer, "/", `\`), registry.READ)
	if err != nil {
		return false, nil
	}
	defer func() {
		_ = k.Close()
	}()

	stop, _, err := k.GetIntegerValue("LastUsedTimeStop")
	if err == registry.ErrNotExist {
		return false, nil
	}
	if err != nil {
		return false, nil
	}

	start, _, err := k.GetIntegerValue("LastUsedTimeStart")
	if err != nil {
		return false, nil
	}

	return start > 0 && stop == 0, nil
}
