package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters for bot activity.
type Metrics struct {
	mu            sync.Mutex
	commandCount  map[string]int64
	transitions   map[string]int64
	notifications map[string]int64
	requestCount  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		commandCount:  make(map[string]int64),
		transitions:   make(map[string]int64),
		notifications: make(map[string]int64),
		requestCount:  make(map[string]int64),
	}
}

// RecordCommand increments the counter for a slash command.
func (m *Metrics) RecordCommand(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandCount[name]++
}

// RecordTransition increments the counter for a lifecycle transition.
func (m *Metrics) RecordTransition(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[name]++
}

// RecordNotification increments delivery counters, keyed by outcome.
func (m *Metrics) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[outcome]++
}

// RecordRequest increments the counter for an HTTP request.
func (m *Metrics) RecordRequest(path, method string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[path+"|"+method]++
}

// Snapshot returns a copy of all counters for the operational surface.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"commands":      copyCounters(m.commandCount),
		"transitions":   copyCounters(m.transitions),
		"notifications": copyCounters(m.notifications),
		"requests":      copyCounters(m.requestCount),
	}
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
