package cricket

import (
	"math"
	"testing"
)

func TestBallsInOver(t *testing.T) {
	cases := []struct {
		overs float64
		want  int
	}{
		{0.0, 0},
		{0.1, 1},
		{3.4, 4},
		{12.5, 5},
		{3.7, 7}, // malformado, propagado sem ajuste
	}
	for _, tc := range cases {
		if got := BallsInOver(tc.overs); got != tc.want {
			t.Errorf("BallsInOver(%v) = %d, want %d", tc.overs, got, tc.want)
		}
	}
}

func TestNextOvers(t *testing.T) {
	cases := []struct {
		overs float64
		want  float64
	}{
		{0.0, 0.1},
		{0.4, 0.5},
		{0.5, 1.0}, // sexta bola fecha o over
		{7.5, 8.0},
		{2.2, 2.3},
	}
	for _, tc := range cases {
		if got := NextOvers(tc.overs); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NextOvers(%v) = %v, want %v", tc.overs, got, tc.want)
		}
	}
}
