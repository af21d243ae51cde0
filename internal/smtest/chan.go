package smtest

import (
	"testing"
	"time"
)

// ReceiveSoon blocks until a value is received from ch,
// failing the test if that takes longer than a few seconds.
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("no value received within 5s")
	}

	panic("unreachable")
}
