package conference

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/process"
)

// Probe answers the two questions the Monitor keeps asking about the
// conferencing application. IsMuted is only meaningful while IsRunning
// reports true.
type Probe interface {
	IsRunning() (bool, error)
	IsMuted() (bool, error)
}

// NewAppProbe creates a Probe which detects the application through its
// process names. The mute query stays pluggable: the application's mute
// control is read through UI introspection, which is host specific and
// supplied by the embedding layer.
func NewAppProbe(processNames []string, queryMuted func() (bool, error)) *AppProbe {
	return &AppProbe{
		ProcessNames: processNames,
		QueryMuted:   queryMuted,
	}
}

type AppProbe struct {
	ProcessNames []string
	QueryMuted   func() (bool, error)
}

func (this *AppProbe) IsRunning() (bool, error) {
	if len(this.ProcessNames) == 0 {
		return false, nil
	}

	candidates, err := process.Processes()
	if err != nil {
		return false, fmt.Errorf("cannot enumerate processes: %w", err)
	}

	for _, candidate := range candidates {
		name, err := candidate.Name()
		if err != nil {
			// Processes come and go while enumerating.
			continue
		}
		for _, wanted := range this.ProcessNames {
			if strings.EqualFold(name, wanted) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (this *AppProbe) IsMuted() (bool, error) {
	if this.QueryMuted == nil {
		return false, fmt.Errorf("no mute query configured")
	}
	return this.QueryMuted()
}
