package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	stepCount    map[string]int64
	sessionCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		stepCount:    make(map[string]int64),
		sessionCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	m.inc(func() map[string]int64 { return m.errorCount }, path+"|"+method+"|"+code)
}

// RecordStep counts a step outcome (done or rejected) per step type.
func (m *Metrics) RecordStep(stepType, outcome string) {
	m.inc(func() map[string]int64 { return m.stepCount }, stepType+"|"+outcome)
}

// RecordSession counts session lifecycle transitions per kind.
func (m *Metrics) RecordSession(kind, result string) {
	m.inc(func() map[string]int64 { return m.sessionCount }, kind+"|"+result)
}

func (m *Metrics) inc(counter func() map[string]int64, key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counter()[key]++
}

// Snapshot copies every counter, grouped by family.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"requests": copyCounts(m.requestCount),
		"errors":   copyCounts(m.errorCount),
		"steps":    copyCounts(m.stepCount),
		"sessions": copyCounts(m.sessionCount),
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
