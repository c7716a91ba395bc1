// Package flags gates optional window behaviour. Flags are read-only once a
// Registry is built; unknown names read as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/tabdock/internal/log"
)

const (
	// FlagDetachNewWindow controls whether a tab dropped outside every window
	// opens in a new window at the drop point.
	FlagDetachNewWindow = "detach-new-window"

	// FlagWatchFiles controls whether windows watch the files their tabs show
	// and mark tabs whose file disappears.
	FlagWatchFiles = "watch-files"
)

// Defaults returns the value of every known flag when config is silent.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagDetachNewWindow: true,
		FlagWatchFiles:      false,
	}
}

// Registry holds resolved flag values.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from configured values layered over Defaults.
// Names that are not known flags are kept but logged, so a typo in the
// config file shows up in the debug log.
func New(configured map[string]bool) *Registry {
	resolved := Defaults()
	for name, value := range configured {
		if _, known := resolved[name]; !known {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		resolved[name] = value
	}
	r := &Registry{flags: resolved}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(resolved), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. It is nil-safe and returns
// false for unknown flags.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Names returns the flag names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.flags))
}
