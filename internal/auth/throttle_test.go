package auth

import (
	"fmt"
	"testing"
	"time"
)

func TestThrottle_BlocksAfterMaxFailures(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	th := NewThrottle(5, 15*time.Minute)
	th.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		th.Fail("a@edc.cm")
	}
	if th.Blocked("a@edc.cm") {
		t.Fatal("blocked after 4 failures")
	}
	th.Fail("a@edc.cm")
	if !th.Blocked("a@edc.cm") {
		t.Fatal("expected block after 5 failures")
	}
	if th.Blocked("b@edc.cm") {
		t.Fatal("other keys must not be blocked")
	}

	now = now.Add(16 * time.Minute)
	if th.Blocked("a@edc.cm") {
		t.Fatal("failures older than the window must expire")
	}
}

func TestThrottle_Reset(t *testing.T) {
	th := NewThrottle(2, time.Minute)
	th.Fail("a@edc.cm")
	th.Fail("a@edc.cm")
	th.Reset("a@edc.cm")
	if th.Blocked("a@edc.cm") {
		t.Fatal("reset must clear failures")
	}
}

func TestThrottle_SweepsExpiredKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	th := NewThrottle(5, 15*time.Minute)
	th.now = func() time.Time { return now }

	for i := 0; i < 500; i++ {
		th.Fail(fmt.Sprintf("user%d@edc.cm", i))
	}
	if th.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", th.Len())
	}

	now = now.Add(16 * time.Minute)
	th.Fail("late@edc.cm")
	if th.Len() != 1 {
		t.Errorf("Len() = %d after the window, want 1", th.Len())
	}
}
