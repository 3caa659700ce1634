// Package testutil provides shared helpers for rxbook tests
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// WaitForCondition waits until fn returns true or the timeout elapses
func WaitForCondition(fn func() bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	interval := 10 * time.Millisecond
	if timeout < 100*time.Millisecond {
		interval = time.Millisecond
	} else if timeout < time.Second {
		interval = 5 * time.Millisecond
	}

	for time.Now().Before(deadline) {
		if fn() {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("condition not met within %v timeout", timeout)
}

// AssertContains fails the test if haystack does not contain needle
func AssertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected string to contain %q, but it didn't.\nFull string:\n%s", needle, haystack)
	}
}

// AssertNotContains fails the test if haystack contains needle
func AssertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("expected string to NOT contain %q, but it did.\nFull string:\n%s", needle, haystack)
	}
}

// AssertContainsAll fails the test if haystack misses any needle
func AssertContainsAll(t *testing.T, haystack string, needles ...string) {
	t.Helper()
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			t.Errorf("expected string to contain %q", needle)
		}
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("expected an error, got nil")
	}
}

// AssertErrorContains fails the test if err is nil or does not mention message
func AssertErrorContains(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Errorf("expected an error containing %q, got nil", message)
		return
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("expected error to contain %q, got: %v", message, err)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, message string) {
	t.Helper()
	if !condition {
		t.Errorf("expected true: %s", message)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, message string) {
	t.Helper()
	if condition {
		t.Errorf("expected false: %s", message)
	}
}

// RequireNoError stops the test if err is not nil
func RequireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Eventually retries fn until it succeeds or the timeout elapses
func Eventually(t *testing.T, fn func() bool, timeout, interval time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(interval)
	}
	t.Errorf("condition not met within %v: %s", timeout, message)
}

// Never fails the test if fn becomes true within the timeout
func Never(t *testing.T, fn func() bool, timeout, interval time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			t.Errorf("condition became true within %v (should have stayed false): %s", timeout, message)
			return
		}
		time.Sleep(interval)
	}
}

// TempFile writes content to a temporary file with the given name
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

// MockTime is a controllable clock safe for concurrent use
type MockTime struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockTime creates a clock starting at start
func NewMockTime(start time.Time) *MockTime {
	return &MockTime{current: start}
}

// Now returns the current mock time
func (m *MockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance moves the clock forward
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
