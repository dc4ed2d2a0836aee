package plugin

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Registry struct {
	plugins map[string]Plugin
	mutex   sync.RWMutex
}

func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{
		plugins: make(map[string]Plugin, len(plugins)),
	}
	for _, p := range plugins {
		_ = r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Plugin) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.plugins[p.ID()]; ok {
		return errors.Errorf("plugin %s already registered", p.ID())
	}
	r.plugins[p.ID()] = p
	return nil
}

func (r *Registry) Get(gameType string) (Plugin, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, ok := r.plugins[gameType]
	if !ok {
		return nil, &UnknownGameTypeError{
			GameType:  gameType,
			Available: r.types(),
		}
	}
	return p, nil
}

// Types returns the registered game types, sorted.
func (r *Registry) Types() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.types()
}

func (r *Registry) types() []string {
	types := maps.Keys(r.plugins)
	slices.Sort(types)
	return types
}
