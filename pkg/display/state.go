package display

import (
	"fmt"
	"strings"
)

// State is the canonical combined usage state every indicator consumes.
type State uint8

const (
	StateIdle             = State(0)
	StateCameraActive     = State(1)
	StateMicActive        = State(2)
	StateBothActive       = State(3)
	StateSuppressedActive = State(4)
	StateSuppressedIdle   = State(5)
)

var (
	AllStates = States{
		StateIdle,
		StateCameraActive,
		StateMicActive,
		StateBothActive,
		StateSuppressedActive,
		StateSuppressedIdle,
	}
)

// Compute derives the State from the raw booleans. It is pure; the mute
// suppression is all-or-nothing and wins over any activity.
func Compute(cameraInUse, micInUse, userMuted bool) State {
	if userMuted {
		if cameraInUse || micInUse {
			return StateSuppressedActive
		}
		return StateSuppressedIdle
	}
	switch {
	case cameraInUse && micInUse:
		return StateBothActive
	case cameraInUse:
		return StateCameraActive
	case micInUse:
		return StateMicActive
	default:
		return StateIdle
	}
}

// Active reports whether some device activity is behind this state.
func (this State) Active() bool {
	switch this {
	case StateCameraActive, StateMicActive, StateBothActive, StateSuppressedActive:
		return true
	default:
		return false
	}
}

// Suppressed reports whether the user mute is engaged.
func (this State) Suppressed() bool {
	return this == StateSuppressedActive || this == StateSuppressedIdle
}

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "idle":
		*this = StateIdle
		return nil
	case "camera":
		*this = StateCameraActive
		return nil
	case "mic", "microphone":
		*this = StateMicActive
		return nil
	case "both":
		*this = StateBothActive
		return nil
	case "suppressed-active", "suppressedactive":
		*this = StateSuppressedActive
		return nil
	case "suppressed-idle", "suppressedidle":
		*this = StateSuppressedIdle
		return nil
	default:
		return fmt.Errorf("illegal-display-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-display-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateIdle:
		return []byte("idle"), nil
	case StateCameraActive:
		return []byte("camera"), nil
	case StateMicActive:
		return []byte("mic"), nil
	case StateBothActive:
		return []byte("both"), nil
	case StateSuppressedActive:
		return []byte("suppressed-active"), nil
	case StateSuppressedIdle:
		return []byte("suppressed-idle"), nil
	default:
		return nil, fmt.Errorf("illegal display state: %v", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type States []State

func (this States) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this States) String() string {
	return strings.Join(this.Strings(), ",")
}
