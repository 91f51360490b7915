package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// fakeApplier simula o store com CAS de versão em memória
type fakeApplier struct {
	rec       *events.ScoreRecord
	conflicts int // quantas Apply devem falhar com conflito antes de aceitar
	applies   int
	fetches   int
}

func (f *fakeApplier) Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error) {
	f.fetches++
	if f.rec == nil {
		return nil, nil
	}
	cp := *f.rec
	return &cp, nil
}

func (f *fakeApplier) Apply(ctx context.Context, matchID string, patch events.ScorePatch) (*events.ScoreRecord, error) {
	f.applies++
	if f.conflicts > 0 {
		f.conflicts--
		// outro escritor passou na frente: versão avança sem essa bola
		f.rec.Version++
		return nil, store.ErrVersionConflict
	}
	if patch.ExpectedVersion != f.rec.Version {
		return nil, store.ErrVersionConflict
	}
	if patch.TeamARuns != nil {
		f.rec.TeamARuns = *patch.TeamARuns
	}
	if patch.TeamAWickets != nil {
		f.rec.TeamAWickets = *patch.TeamAWickets
	}
	if patch.TeamAOvers != nil {
		f.rec.TeamAOvers = *patch.TeamAOvers
	}
	if patch.BallByBall != nil {
		f.rec.BallByBall = patch.BallByBall
	}
	f.rec.Version++
	cp := *f.rec
	return &cp, nil
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestApplyBallFoldsOntoRecord(t *testing.T) {
	fa := &fakeApplier{rec: &events.ScoreRecord{MatchID: "m1", Version: 1}}

	rec, ev, err := applyBall(context.Background(), fa, "m1", events.Ball{Runs: 4}, fixedNow)
	if err != nil {
		t.Fatalf("applyBall: %v", err)
	}
	if rec.TeamARuns != 4 || rec.TeamAOvers != 0.1 || rec.Version != 2 {
		t.Errorf("record = %+v, want score 4, overs 0.1, version 2", rec)
	}
	if ev.Over != 1 || ev.BallInOver != 1 {
		t.Errorf("event = over %d ball %d, want 1/1", ev.Over, ev.BallInOver)
	}
}

func TestApplyBallRetriesOnVersionConflict(t *testing.T) {
	fa := &fakeApplier{rec: &events.ScoreRecord{MatchID: "m1", Version: 1}, conflicts: 2}

	rec, _, err := applyBall(context.Background(), fa, "m1", events.Ball{Runs: 1}, fixedNow)
	if err != nil {
		t.Fatalf("applyBall after conflicts: %v", err)
	}
	if fa.applies != 3 {
		t.Errorf("applies = %d, want 3 (duas recusas + sucesso)", fa.applies)
	}
	if rec.TeamARuns != 1 {
		t.Errorf("runs = %d, want 1", rec.TeamARuns)
	}
	// cada tentativa relê o registro antes do fold
	if fa.fetches != 3 {
		t.Errorf("fetches = %d, want 3", fa.fetches)
	}
}

func TestApplyBallGivesUpAfterRepeatedConflicts(t *testing.T) {
	fa := &fakeApplier{rec: &events.ScoreRecord{MatchID: "m1", Version: 1}, conflicts: 10}

	_, _, err := applyBall(context.Background(), fa, "m1", events.Ball{Runs: 1}, fixedNow)
	if !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
	if fa.applies != 3 {
		t.Errorf("applies = %d, want 3 tentativas no máximo", fa.applies)
	}
}

func TestApplyBallNoRecord(t *testing.T) {
	fa := &fakeApplier{}

	_, _, err := applyBall(context.Background(), fa, "m1", events.Ball{Runs: 1}, fixedNow)
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("err = %v, want ErrNoRecord", err)
	}
	if fa.applies != 0 {
		t.Errorf("applies = %d, want 0", fa.applies)
	}
}
