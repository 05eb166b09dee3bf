package indicator

import (
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"
)

// Registry holds the ordered list of registered indicators and fans
// operations out to them. Every invocation is isolated: an error or panic
// of one indicator is logged and the remaining ones still get theirs, in
// registration order.
type Registry struct {
	entries []registryEntry
	mutex   sync.RWMutex
}

type registryEntry struct {
	indicator Indicator
	active    bool
}

// Register appends to the dispatch list. There is no deduplication;
// callers are responsible for not registering the same instance twice.
func (this *Registry) Register(v Indicator) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.entries = append(this.entries, registryEntry{v, true})
}

// Len reports how many indicators are currently registered.
func (this *Registry) Len() int {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	return len(this.entries)
}

func (this *Registry) BroadcastUpdate(ctx Context) {
	this.each("update", func(v Indicator) error {
		return v.Update(ctx)
	})
}

func (this *Registry) BroadcastRefresh() {
	this.each("refresh", func(v Indicator) error {
		return v.Refresh()
	})
}

func (this *Registry) BroadcastMute() {
	this.each("mute", func(v Indicator) error {
		return v.Mute()
	})
}

func (this *Registry) BroadcastUnmute() {
	this.each("unmute", func(v Indicator) error {
		return v.Unmute()
	})
}

// TeardownAll disposes every indicator, isolated the same way as the
// broadcasts, and clears the list.
func (this *Registry) TeardownAll() {
	this.mutex.Lock()
	entries := this.entries
	this.entries = nil
	this.mutex.Unlock()

	for i, e := range entries {
		if !e.active {
			continue
		}
		invoke("dispose", i, func() error {
			return e.indicator.Dispose()
		})
	}
}

func (this *Registry) each(operation string, fn func(Indicator) error) {
	this.mutex.RLock()
	entries := this.entries
	this.mutex.RUnlock()

	for i, e := range entries {
		if !e.active {
			continue
		}
		invoke(operation, i, func() error {
			return fn(e.indicator)
		})
	}
}

func invoke(operation string, index int, fn func() error) {
	logger := log.
		With("operation", operation).
		With("indicator", index)

	defer func() {
		if r := recover(); r != nil {
			logger.WithError(fmt.Errorf("%v", r)).
				Error("Indicator panicked. Remaining indicators are still served.")
		}
	}()

	if err := fn(); err != nil {
		logger.WithError(err).
			Warn("Indicator failed. Remaining indicators are still served.")
	}
}
