package app

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		name     string
		refresh  time.Duration
		failures int
		want     time.Duration
	}{
		{"healthy keeps refresh interval", 5 * time.Second, 0, 5 * time.Second},
		{"negative count treated as healthy", 5 * time.Second, -3, 5 * time.Second},
		{"first failure doubles", 5 * time.Second, 1, 10 * time.Second},
		{"second failure doubles again", 5 * time.Second, 2, 20 * time.Second},
		{"third failure hits the cap", 5 * time.Second, 3, maxBackoff},
		{"short interval climbs slower", time.Second, 4, 16 * time.Second},
		{"interval above cap is clamped", time.Minute, 1, maxBackoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateBackoff(tt.failures, tt.refresh); got != tt.want {
				t.Fatalf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, tt.refresh, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_NeverDecreasesBeforeCap(t *testing.T) {
	prev := time.Duration(0)
	for failures := 0; failures <= 40; failures++ {
		got := calculateBackoff(failures, 3*time.Second)
		if got < prev {
			t.Fatalf("calculateBackoff(%d) = %v, below previous %v", failures, got, prev)
		}
		if got > maxBackoff {
			t.Fatalf("calculateBackoff(%d) = %v, above cap %v", failures, got, maxBackoff)
		}
		prev = got
	}
}
