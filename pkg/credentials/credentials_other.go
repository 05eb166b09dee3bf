//go:build !windows

package credentials

// Platforms without a native credential store fall back to the
// configuration file, handled by the caller.

func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this *Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
