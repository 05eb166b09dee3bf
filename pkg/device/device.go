package device

import (
	"fmt"
	"iter"
	"strings"
)

type Kind uint8

const (
	KindCamera     = Kind(0)
	KindMicrophone = Kind(1)
)

var (
	AllKinds = Kinds{
		KindCamera,
		KindMicrophone,
	}
)

func (this *Kind) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "camera", "cam":
		*this = KindCamera
		return nil
	case "microphone", "mic":
		*this = KindMicrophone
		return nil
	default:
		return fmt.Errorf("illegal-device-kind: %s", plain)
	}
}

func (this Kind) String() string {
	switch this {
	case KindCamera:
		return "camera"
	case KindMicrophone:
		return "microphone"
	default:
		return fmt.Sprintf("illegal-device-kind-%d", this)
	}
}

func (this Kind) MarshalText() (text []byte, err error) {
	switch this {
	case KindCamera, KindMicrophone:
		return []byte(this.String()), nil
	default:
		return nil, fmt.Errorf("illegal device kind: %d", this)
	}
}

func (this *Kind) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Kinds []Kind

func (this Kinds) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Kinds) String() string {
	return strings.Join(this.Strings(), ",")
}

// Device is a snapshot view of one capture device. The core never owns
// device objects; it only reads them.
type Device struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	InUse bool   `json:"inUse,omitempty"`
}

func (this Device) String() string {
	return fmt.Sprintf("[%v] %s", this.Kind, this.Name)
}

type Devices []Device

func (this Devices) IsZero() bool {
	return len(this) <= 0
}

func (this Devices) HasContent() bool {
	return !this.IsZero()
}

func (this Devices) ByID(id string) (Device, bool) {
	for _, v := range this {
		if v.ID == id {
			return v, true
		}
	}
	return Device{}, false
}

func (this Devices) OfKind(kind Kind) Devices {
	var result Devices
	for _, v := range this {
		if v.Kind == kind {
			result = append(result, v)
		}
	}
	return result
}

func (this Devices) AnyInUse() bool {
	for _, v := range this {
		if v.InUse {
			return true
		}
	}
	return false
}

func (this Devices) InUse() iter.Seq[Device] {
	return func(yield func(Device) bool) {
		for _, v := range this {
			if v.InUse {
				if !yield(v) {
					return
				}
			}
		}
	}
}
