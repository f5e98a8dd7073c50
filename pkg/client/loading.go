package client

import "sync"

// LoadingTracker counts in-flight requests per resource key so independent
// operations (two different student details, say) never share a flag.
type LoadingTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewLoadingTracker() *LoadingTracker {
	return &LoadingTracker{counts: make(map[string]int)}
}

func (t *LoadingTracker) begin(key string) {
	t.mu.Lock()
	t.counts[key]++
	t.mu.Unlock()
}

func (t *LoadingTracker) end(key string) {
	t.mu.Lock()
	if t.counts[key] > 0 {
		t.counts[key]--
	}
	if t.counts[key] == 0 {
		delete(t.counts, key)
	}
	t.mu.Unlock()
}

// IsLoading reports whether any request for the given resource key is
// still in flight.
func (t *LoadingTracker) IsLoading(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[key] > 0
}
