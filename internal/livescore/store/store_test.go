package store

import (
	"strings"
	"testing"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func TestBuildSet(t *testing.T) {
	cases := []struct {
		name      string
		patch     events.ScorePatch
		wantSet   string
		wantArgs  int
		wantError bool
	}{
		{
			name: "ball delta patch",
			patch: events.ScorePatch{
				TeamARuns:    intp(12),
				TeamAWickets: intp(1),
				TeamAOvers:   floatp(2.4),
				BallByBall:   []events.BallEvent{{Runs: 4}},
			},
			wantSet:  "team_a_runs = $1, team_a_wickets = $2, team_a_overs = $3, ball_by_ball = $4",
			wantArgs: 4,
		},
		{
			name:     "ui reference patch",
			patch:    events.ScorePatch{CurrentStriker: strp("p1"), CurrentNonStriker: strp("p2")},
			wantSet:  "current_striker = $1, current_non_striker = $2",
			wantArgs: 2,
		},
		{
			name:     "empty log still replaces the column",
			patch:    events.ScorePatch{BallByBall: []events.BallEvent{}},
			wantSet:  "ball_by_ball = $1",
			wantArgs: 1,
		},
		{
			name:      "empty patch is rejected",
			patch:     events.ScorePatch{},
			wantError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, args, err := buildSet(tc.patch)
			if tc.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if set != tc.wantSet {
				t.Errorf("set = %q, want %q", set, tc.wantSet)
			}
			if len(args) != tc.wantArgs {
				t.Errorf("args = %d, want %d", len(args), tc.wantArgs)
			}
		})
	}
}

func TestBuildSetNeverTouchesVersionDirectly(t *testing.T) {
	// version e updated_at são responsabilidade exclusiva do UPDATE fixo
	// em Apply; o patch não pode sobrescrevê-los.
	set, _, err := buildSet(events.ScorePatch{TeamARuns: intp(1)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if strings.Contains(set, "version") || strings.Contains(set, "updated_at") {
		t.Errorf("set clause %q must not carry version/updated_at", set)
	}
}
