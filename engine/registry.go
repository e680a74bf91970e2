package engine

import (
	"sync"

	"github.com/hupe1980/trademesh/core"
)

// registry is the thread-safe name->agent map. It preserves registration
// order so status reports and broadcasts are deterministic.
type registry struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
	order  []string
}

func newRegistry() *registry {
	return &registry{agents: make(map[string]core.Agent)}
}

func (r *registry) add(a core.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[a.Name()]; !exists {
		r.order = append(r.order, a.Name())
	}
	r.agents[a.Name()] = a
}

func (r *registry) get(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.order...)
}

// layerMembers returns the agents of a layer in registration order.
func (r *registry) layerMembers(layer string) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []core.Agent
	for _, name := range r.order {
		if a := r.agents[name]; a.Layer() == layer {
			members = append(members, a)
		}
	}
	return members
}

// all returns every registered agent in registration order.
func (r *registry) all() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]core.Agent, 0, len(r.order))
	for _, name := range r.order {
		agents = append(agents, r.agents[name])
	}
	return agents
}
