package acquirer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry is the process-wide, immutable-after-startup name-to-adapter
// mapping (§4.4, §5 "adapter registry is process-wide immutable after
// startup"). The RWMutex only matters during the startup registration
// window; steady-state traffic is all reads.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{adapters: make(map[string]Adapter), log: log}
}

// Register is idempotent: re-registering a name overwrites the previous
// entry and logs a warning (§4.4), rather than erroring.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Name()
	if _, exists := r.adapters[name]; exists {
		r.log.Warn().Str("adapter", name).Msg("overwriting already-registered adapter")
	}
	r.adapters[name] = a
}

// Get fails with the list of available names so a misconfigured
// DEFAULT_ADAPTER or merchant routing_config surfaces a useful error.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		names := make([]string, 0, len(r.adapters))
		for n := range r.adapters {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("adapter %q not found, available: %v", name, names)
	}
	return a, nil
}
