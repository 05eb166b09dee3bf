package device

// Provider answers on-demand snapshot queries about the capture devices of
// the host. Snapshots may be stale between polls; nothing here blocks.
type Provider interface {
	// FindDevices returns all currently attached capture devices of all
	// kinds, with their in-use state.
	FindDevices() (Devices, error)
}

// ProviderFunc makes a plain function usable as Provider.
type ProviderFunc func() (Devices, error)

func (this ProviderFunc) FindDevices() (Devices, error) {
	return this()
}

// ListActiveCameras is a convenience for providers: cameras of the
// snapshot which are currently in use.
func ListActiveCameras(p Provider) (Devices, error) {
	return listActiveOfKind(p, KindCamera)
}

// ListActiveMicrophones is the microphone counterpart of
// ListActiveCameras.
func ListActiveMicrophones(p Provider) (Devices, error) {
	return listActiveOfKind(p, KindMicrophone)
}

func listActiveOfKind(p Provider, kind Kind) (Devices, error) {
	all, err := p.FindDevices()
	if err != nil {
		return nil, err
	}
	var result Devices
	for v := range all.OfKind(kind).InUse() {
		result = append(result, v)
	}
	return result, nil
}
