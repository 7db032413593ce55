package connection

import (
	"testing"
	"time"
)

func TestScheduler_Delay_NoJitter(t *testing.T) {
	s := NewScheduler(time.Second, 60*time.Second, 10, false)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second}, // capped
		{20, 60 * time.Second},
		{-1, 1 * time.Second}, // clamped to 0
	}

	for _, tt := range tests {
		if got := s.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestScheduler_Delay_JitterBounds(t *testing.T) {
	base := time.Second
	cap := 10 * time.Second
	s := NewScheduler(base, cap, 10, true)

	for attempt := 0; attempt <= 5; attempt++ {
		lo := base << attempt
		if lo > cap {
			lo = cap
		}
		hi := time.Duration(1.3 * float64(lo))
		if hi > cap {
			hi = cap
		}

		for i := 0; i < 50; i++ {
			got := s.Delay(attempt)
			if got < lo || got > hi {
				t.Fatalf("Delay(%d) = %v, want within [%v, %v]", attempt, got, lo, hi)
			}
		}
	}
}

func TestScheduler_ShouldRetry(t *testing.T) {
	s := NewScheduler(time.Second, time.Minute, 3, false)

	tests := []struct {
		attempt int
		want    bool
	}{
		{0, true},
		{2, true},
		{3, false},
		{10, false},
	}

	for _, tt := range tests {
		if got := s.ShouldRetry(tt.attempt); got != tt.want {
			t.Errorf("ShouldRetry(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestScheduler_ZeroAttemptsNeverRetries(t *testing.T) {
	s := NewScheduler(time.Second, time.Minute, 0, false)
	if s.ShouldRetry(0) {
		t.Error("ShouldRetry(0) with maxAttempts=0 should be false")
	}
}
