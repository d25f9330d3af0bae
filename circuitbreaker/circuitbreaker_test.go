package circuitbreaker

import (
	"testing"
	"time"
)

func TestClosedAllowsRequests(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 3, Cooldown: time.Minute})

	if !cb.Allow() {
		t.Error("Expected closed circuit to allow requests")
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED, got %s", cb.State())
	}
}

func TestOpensAfterThreshold(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 3, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.IsOpen() {
		t.Error("Circuit opened before threshold")
	}

	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Error("Expected circuit to open at threshold")
	}
	if cb.Allow() {
		t.Error("Open circuit must block requests")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 3, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.IsOpen() {
		t.Error("Non-consecutive failures should not open the circuit")
	}
	if cb.Failures() != 2 {
		t.Errorf("Expected 2 failures, got %d", cb.Failures())
	}
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 1, Cooldown: 10 * time.Millisecond})

	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("Expected open circuit to block")
	}

	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("Expected test request after cooldown")
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("Expected HALF-OPEN, got %s", cb.State())
	}
	// Only one test request at a time.
	if cb.Allow() {
		t.Error("Half-open circuit allowed a second request")
	}

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after test success, got %s", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 1, Cooldown: 10 * time.Millisecond})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	cb.Allow()
	cb.RecordFailure()

	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after failed test request, got %s", cb.State())
	}
}

func TestReset(t *testing.T) {
	cb := New(Config{Name: "test", Threshold: 1, Cooldown: time.Hour})

	cb.RecordFailure()
	cb.Reset()

	if cb.State() != StateClosed || cb.Failures() != 0 {
		t.Errorf("Expected clean CLOSED state after reset, got %s / %d failures", cb.State(), cb.Failures())
	}
	if cb.TimeUntilRetry() != 0 {
		t.Errorf("Expected no retry delay after reset, got %v", cb.TimeUntilRetry())
	}
}
