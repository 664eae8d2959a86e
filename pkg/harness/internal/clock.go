// Package internal provides internal utilities for the harness packages.
package internal

import "time"

// Clock is an interface for obtaining the current time. The abstraction
// allows deterministic testing of expiry and backoff logic.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock is a Clock for tests that allows manual control of time
// progression. It is not safe for concurrent use.
type MockClock struct {
	current time.Time
}

// NewMockClock creates a MockClock initialized to t. A zero t falls back to
// a fixed start time so expiry arithmetic never touches the zero value.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Unix(1700000000, 0) // 2023-11-14
	}
	return &MockClock{current: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	return m.current
}

// Advance moves the clock forward by d. Panics on negative d so tests cannot
// accidentally move time backwards.
func (m *MockClock) Advance(d time.Duration) {
	if d < 0 {
		panic("MockClock.Advance: duration must be non-negative")
	}
	m.current = m.current.Add(d)
}

// Set sets the clock to t. Prefer Advance in tests.
func (m *MockClock) Set(t time.Time) {
	m.current = t
}
