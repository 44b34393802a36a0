package utils

import "sync"

// URLTracker tracks hotel URLs already dispatched in a run, so the same
// hotel configured under two keys is only scraped once per site.
type URLTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewURLTracker creates a new tracker
func NewURLTracker() *URLTracker {
	return &URLTracker{seen: make(map[string]struct{})}
}

// Add returns true if the URL is new (not seen before), false if duplicate
func (t *URLTracker) Add(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[url]; exists {
		return false
	}
	t.seen[url] = struct{}{}
	return true
}

// Count returns the number of tracked URLs
func (t *URLTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
