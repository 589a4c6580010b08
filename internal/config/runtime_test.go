package config

import (
	"sync"
	"testing"
)

func TestRuntimeGetStore(t *testing.T) {
	t.Parallel()

	initial := MakeTestConfig()
	rt := NewRuntime(initial)
	if rt.Get() != initial {
		t.Fatal("Get should return the initial config")
	}

	next := MakeTestConfig()
	next.Logging.Level = "debug"
	if err := rt.Store(next); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if rt.Get() != next {
		t.Error("Get should return the stored config")
	}
}

func TestRuntimeSubscribe(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(MakeTestConfig())
	var seen []*Config
	rt.Subscribe(func(cfg *Config) { seen = append(seen, cfg) })

	a, b := MakeTestConfig(), MakeTestConfig()
	_ = rt.Store(a)
	_ = rt.Store(b)

	if len(seen) != 2 || seen[0] != a || seen[1] != b {
		t.Errorf("subscriber saw %v, want [a b]", seen)
	}
}

func TestRuntimeConcurrentAccess(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(MakeTestConfig())
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = rt.Store(MakeTestConfig())
				return
			}
			if rt.Get() == nil {
				t.Error("Get returned nil")
			}
		}()
	}
	wg.Wait()
}
