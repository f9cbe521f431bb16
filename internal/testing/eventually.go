package simtesting

import (
	"testing"
	"time"
)

// Eventually polls condition every interval until it returns true or the
// timeout elapses, then fails the test with msg (or a default message).
func Eventually(t testing.TB, timeout, interval time.Duration, condition func() bool, msg ...string) {
	t.Helper()
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			m := "condition not met within timeout"
			if len(msg) > 0 && msg[0] != "" {
				m = msg[0]
			}
			t.Fatal(m)
		}
		time.Sleep(interval)
	}
}

// ExpectSignal fails unless ch delivers within timeout. Used with the
// stores' Changed channels.
func ExpectSignal(t testing.TB, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("expected %s signal within %s", what, timeout)
	}
}

// ExpectNoSignal fails if ch has a pending signal.
func ExpectNoSignal(t testing.TB, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s signal", what)
	default:
	}
}
