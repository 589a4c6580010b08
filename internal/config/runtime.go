package config

import (
	"sync"
	"sync/atomic"
)

// Runtime holds the live configuration. Reads are lock-free; a reload swaps
// the whole *Config so readers see either the old or the new value, never a
// mix.
//
//	runtime := config.NewRuntime(initial)
//	watcher.OnReload(runtime.Store)
//	runtime.Subscribe(func(cfg *config.Config) {
//		engine.UpdateOptions(cfg.EngineOptions())
//	})
type Runtime struct {
	ptr         atomic.Pointer[Config]
	mu          sync.Mutex
	subscribers []func(*Config)
}

// NewRuntime creates a Runtime holding initial.
func NewRuntime(initial *Config) *Runtime {
	r := &Runtime{}
	r.ptr.Store(initial)
	return r
}

// Get returns the current configuration.
func (r *Runtime) Get() *Config {
	return r.ptr.Load()
}

// Store swaps in cfg and notifies subscribers. It has the ReloadCallback
// signature so it can be registered on a Watcher directly.
func (r *Runtime) Store(cfg *Config) error {
	r.ptr.Store(cfg)

	r.mu.Lock()
	subs := make([]func(*Config), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}

// Subscribe registers fn to run after every Store.
func (r *Runtime) Subscribe(fn func(*Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

var _ RuntimeConfig = (*Runtime)(nil)
