package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/gaubeleo/photoframe/config"
)

// ServiceFactory builds a configured service instance.
type ServiceFactory func(ctx context.Context, cfg *config.Config, instanceID string) (PhotoService, error)

var (
	registryMu      sync.RWMutex
	serviceRegistry = make(map[string]ServiceFactory)
)

// RegisterService registers a service factory under name.
func RegisterService(name string, factory ServiceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	serviceRegistry[name] = factory
}

// Services returns a copy of the registered factories.
func Services() map[string]ServiceFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make(map[string]ServiceFactory, len(serviceRegistry))
	for k, v := range serviceRegistry {
		out[k] = v
	}
	return out
}

// ServiceNames returns the registered names, sorted.
func ServiceNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(serviceRegistry))
	for k := range serviceRegistry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
