// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gfx"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default: first backend that opens wins.
	backendPriority = []string{BackendWGPU, BackendHeadless}
)

// Register registers a device factory under name, replacing any earlier
// registration.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get opens a device from the named backend.
func Get(name string) (gfx.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	return dev, nil
}

// Default opens a device from the best available backend. Backends are
// tried in priority order, then the remaining ones by name. A backend whose
// factory fails is skipped.
func Default() (gfx.Device, error) {
	for _, name := range candidates() {
		dev, err := Get(name)
		if err == nil {
			return dev, nil
		}
		gfx.Logger().Warn("backend: open failed, trying next", "backend", name, "err", err)
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default device or panics.
func MustDefault() gfx.Device {
	dev, err := Default()
	if err != nil {
		panic(err)
	}
	return dev
}

// Open opens the named backend and creates a context on it. An empty name
// selects Default.
func Open(name string, opts ...gfx.ContextOption) (*gfx.Context, error) {
	var (
		dev gfx.Device
		err error
	)
	if name == "" {
		dev, err = Default()
	} else {
		dev, err = Get(name)
	}
	if err != nil {
		return nil, err
	}
	ctx, err := gfx.NewContext(dev, opts...)
	if err != nil {
		dev.Shutdown()
		return nil, err
	}
	return ctx, nil
}

func candidates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	seen := make(map[string]bool, len(factories))
	for _, name := range backendPriority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(factories))
	for name := range factories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
