package cricket

import (
	"math"
	"testing"
	"time"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

var now = time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

func rec(runs, wickets int, overs float64, log ...events.BallEvent) events.ScoreRecord {
	return events.ScoreRecord{
		MatchID:      "MATCH_001",
		TeamARuns:    runs,
		TeamAWickets: wickets,
		TeamAOvers:   overs,
		BallByBall:   log,
	}
}

func apply(t *testing.T, r events.ScoreRecord, b events.Ball) events.ScoreRecord {
	t.Helper()
	patch, _ := AddBall(r, b, now)
	r.TeamARuns = *patch.TeamARuns
	r.TeamAWickets = *patch.TeamAWickets
	r.TeamAOvers = *patch.TeamAOvers
	r.BallByBall = patch.BallByBall
	return r
}

func TestAddBallSingleDelivery(t *testing.T) {
	cases := []struct {
		name        string
		start       events.ScoreRecord
		ball        events.Ball
		wantRuns    int
		wantWickets int
		wantOvers   float64
	}{
		{
			name:      "dot ball advances the over fraction",
			start:     rec(10, 1, 2.3),
			ball:      events.Ball{Runs: 0},
			wantRuns:  10, wantWickets: 1, wantOvers: 2.4,
		},
		{
			name:      "boundary adds runs and a ball",
			start:     rec(10, 1, 2.3),
			ball:      events.Ball{Runs: 4},
			wantRuns:  14, wantWickets: 1, wantOvers: 2.4,
		},
		{
			name:      "sixth legal ball completes the over",
			start:     rec(0, 0, 0.5),
			ball:      events.Ball{Runs: 1},
			wantRuns:  1, wantWickets: 0, wantOvers: 1.0,
		},
		{
			name:      "wide adds runs+1 and no ball slot",
			start:     rec(0, 0, 0.2),
			ball:      events.Ball{Runs: 0, IsWide: true},
			wantRuns:  1, wantWickets: 0, wantOvers: 0.2,
		},
		{
			name:      "no-ball with bat runs adds runs+1, overs unchanged",
			start:     rec(7, 2, 4.5),
			ball:      events.Ball{Runs: 2, IsNoBall: true},
			wantRuns:  10, wantWickets: 2, wantOvers: 4.5,
		},
		{
			name:      "wicket consumes a legal-ball slot, runs unchanged",
			start:     rec(30, 2, 1.1),
			ball:      events.Ball{Runs: 0, IsWicket: true},
			wantRuns:  30, wantWickets: 3, wantOvers: 1.2,
		},
		{
			name:      "wide plus wicket is accepted, not rejected",
			start:     rec(0, 0, 0.0),
			ball:      events.Ball{Runs: 0, IsWide: true, IsWicket: true},
			wantRuns:  1, wantWickets: 1, wantOvers: 0.0,
		},
		{
			name:      "bye counts as a legal delivery",
			start:     rec(0, 0, 0.0),
			ball:      events.Ball{Runs: 1, IsBye: true},
			wantRuns:  1, wantWickets: 0, wantOvers: 0.1,
		},
		{
			// dígito fracionário .7 é estruturalmente inválido mas não é
			// rejeitado: >=5 fecha o over, propagando o resultado.
			name:      "malformed fraction propagates instead of failing",
			start:     rec(0, 0, 3.7),
			ball:      events.Ball{Runs: 0},
			wantRuns:  0, wantWickets: 0, wantOvers: 4.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := apply(t, tc.start, tc.ball)
			if got.TeamARuns != tc.wantRuns {
				t.Errorf("runs = %d, want %d", got.TeamARuns, tc.wantRuns)
			}
			if got.TeamAWickets != tc.wantWickets {
				t.Errorf("wickets = %d, want %d", got.TeamAWickets, tc.wantWickets)
			}
			if math.Abs(got.TeamAOvers-tc.wantOvers) > 1e-9 {
				t.Errorf("overs = %v, want %v", got.TeamAOvers, tc.wantOvers)
			}
			if len(got.BallByBall) != len(tc.start.BallByBall)+1 {
				t.Errorf("log grew by %d, want 1", len(got.BallByBall)-len(tc.start.BallByBall))
			}
		})
	}
}

func TestAddBallCopiesFlagsUnnormalized(t *testing.T) {
	in := events.Ball{Runs: 3, IsWicket: true, IsWide: true, IsNoBall: true, IsBye: true, IsLegBye: true}
	_, ev := AddBall(rec(0, 0, 0.0), in, now)

	if ev.Runs != in.Runs || ev.IsWicket != in.IsWicket || ev.IsWide != in.IsWide ||
		ev.IsNoBall != in.IsNoBall || ev.IsBye != in.IsBye || ev.IsLegBye != in.IsLegBye {
		t.Errorf("event flags = %+v, want exact copy of %+v", ev, in)
	}
	if !ev.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, now)
	}
}

func TestAddBallRecordedOverFields(t *testing.T) {
	// Over/BallInOver derivam do overs pré-atualização; no fechamento do
	// over o Over registrado NÃO é corrigido para o over recém-completado.
	// Teste fixa esse comportamento para que qualquer "conserto" futuro
	// seja consciente.
	cases := []struct {
		name           string
		overs          float64
		wantOver       int
		wantBallInOver int
	}{
		{"first ball of the match", 0.0, 1, 1},
		{"mid over", 2.3, 3, 4},
		{"sixth ball keeps the pre-update over number", 0.5, 1, 6},
		{"fresh over after completion", 1.0, 2, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ev := AddBall(rec(0, 0, tc.overs), events.Ball{Runs: 1}, now)
			if ev.Over != tc.wantOver || ev.BallInOver != tc.wantBallInOver {
				t.Errorf("over/ballInOver = %d/%d, want %d/%d",
					ev.Over, ev.BallInOver, tc.wantOver, tc.wantBallInOver)
			}
		})
	}
}

func TestAddBallDoesNotTouchTeamBOrRefs(t *testing.T) {
	r := rec(0, 0, 0.0)
	r.TeamBRuns = 99
	patch, _ := AddBall(r, events.Ball{Runs: 4}, now)

	if patch.TeamBRuns != nil || patch.TeamBWickets != nil || patch.TeamBOvers != nil {
		t.Error("patch must not carry team B fields")
	}
	if patch.CurrentBattingTeamID != nil || patch.CurrentBowler != nil ||
		patch.CurrentStriker != nil || patch.CurrentNonStriker != nil {
		t.Error("patch must not carry striker/bowler references")
	}
}

func TestScenarioFullOverOfSingles(t *testing.T) {
	r := rec(0, 0, 0.0)
	for i := 0; i < 6; i++ {
		r = apply(t, r, events.Ball{Runs: 1})
	}
	if r.TeamARuns != 6 || r.TeamAWickets != 0 || r.TeamAOvers != 1.0 {
		t.Errorf("got %d/%d em %v overs, want 6/0 em 1.0", r.TeamARuns, r.TeamAWickets, r.TeamAOvers)
	}
	if len(r.BallByBall) != 6 {
		t.Errorf("log len = %d, want 6", len(r.BallByBall))
	}
}

func TestScenarioWideThenFiveDots(t *testing.T) {
	// O wide não consome bola do over: após cinco bolas válidas o over
	// ainda está em 0.5.
	r := apply(t, rec(0, 0, 0.0), events.Ball{Runs: 0, IsWide: true})
	for i := 0; i < 5; i++ {
		r = apply(t, r, events.Ball{Runs: 0})
	}
	if r.TeamARuns != 1 || r.TeamAWickets != 0 || math.Abs(r.TeamAOvers-0.5) > 1e-9 {
		t.Errorf("got %d/%d em %v overs, want 1/0 em 0.5", r.TeamARuns, r.TeamAWickets, r.TeamAOvers)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		ball events.Ball
		want string
	}{
		{events.Ball{Runs: 4}, "4"},
		{events.Ball{Runs: 0}, "0"},
		{events.Ball{IsWicket: true}, "W"},
		{events.Ball{Runs: 1, IsWide: true}, "WD"},
		{events.Ball{Runs: 1, IsNoBall: true}, "NB"},
		{events.Ball{Runs: 1, IsBye: true}, "B"},
		{events.Ball{Runs: 1, IsLegBye: true}, "LB"},
	}
	for _, tc := range cases {
		if got := Label(tc.ball); got != tc.want {
			t.Errorf("Label(%+v) = %q, want %q", tc.ball, got, tc.want)
		}
	}
}
