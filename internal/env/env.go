// Package env layers provider and function environment variables the way a
// deployed function would see them.
package env

import (
	"os"
	"sort"
	"sync"

	"github.com/qrioso-software/qriososls-jest/internal/config"
)

// Env is a key-value environment that handler code observes.
type Env interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Unset(key string) error
	// Environ returns KEY=value pairs.
	Environ() []string
}

// Process is the real process environment.
type Process struct{}

func (Process) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (Process) Set(key, value string) error      { return os.Setenv(key, value) }
func (Process) Unset(key string) error           { return os.Unsetenv(key) }
func (Process) Environ() []string                { return os.Environ() }

// Map is an in-memory environment, used as an overlay for child processes.
type Map struct {
	mu   sync.RWMutex
	vars map[string]string
}

func NewMap() *Map {
	return &Map{vars: make(map[string]string)}
}

func (m *Map) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[key]
	return v, ok
}

func (m *Map) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}

func (m *Map) Unset(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

// Environ returns the pairs sorted by key.
func (m *Map) Environ() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.vars))
	for k := range m.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+m.vars[k])
	}
	return out
}

// Bind writes the provider environment and then the environment of function
// into e, so function values win on collisions. Values go through ${stage}
// style resolution. Earlier bindings are not cleared: binding A then B leaves
// A's keys that B does not redefine in place. Deferred values such as {Ref: ...}
// are skipped.
func Bind(e Env, cfg *config.ServiceConfig, function string) error {
	if err := apply(e, cfg, cfg.Provider.Environment.Vars); err != nil {
		return err
	}
	fn, ok := cfg.Functions.Get(function)
	if !ok {
		return nil
	}
	return apply(e, cfg, fn.Environment.Vars)
}

func apply(e Env, cfg *config.ServiceConfig, vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := e.Set(k, cfg.Resolve(vars[k])); err != nil {
			return err
		}
	}
	return nil
}
