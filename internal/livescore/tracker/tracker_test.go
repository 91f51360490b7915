package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// fakeStore implementa Store em memória, no estilo dos mocks de teste do
// restante da plataforma: só o que os testes precisam observar.
type fakeStore struct {
	mu       sync.Mutex
	rec      *events.ScoreRecord
	fetchErr error
	applyErr error
	applied  []events.ScorePatch
	subs     []*fakeSub
}

func (f *fakeStore) Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.rec == nil {
		return nil, nil
	}
	rec := *f.rec
	return &rec, nil
}

func (f *fakeStore) Apply(ctx context.Context, matchID string, patch events.ScorePatch) (*events.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, patch)
	rec := *f.rec
	return &rec, nil
}

func (f *fakeStore) Subscribe(ctx context.Context, matchID string) (store.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSub{out: make(chan events.ScoreRecord, 8)}
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeStore) applyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func (f *fakeStore) liveSubs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.closed() {
			n++
		}
	}
	return n
}

type fakeSub struct {
	mu         sync.Mutex
	out        chan events.ScoreRecord
	closeCalls int
}

func (s *fakeSub) Updates() <-chan events.ScoreRecord { return s.out }

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	if s.closeCalls == 1 {
		close(s.out)
	}
	return nil
}

func (s *fakeSub) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls > 0
}

func (s *fakeSub) notify(rec events.ScoreRecord) { s.out <- rec }

func record(version, runs int) *events.ScoreRecord {
	return &events.ScoreRecord{MatchID: "m1", TeamARuns: runs, Version: version}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTracker(f *fakeStore) *Tracker { return New(f, zap.NewNop()) }

func TestOpenWithoutMatchIsNoRecordNotLoading(t *testing.T) {
	f := &fakeStore{}
	tr := newTracker(f)

	if err := tr.Open(context.Background(), ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, loading := tr.Score()
	if rec != nil || loading {
		t.Errorf("got rec=%v loading=%v, want nil/false", rec, loading)
	}
	if f.liveSubs() != 0 {
		t.Errorf("subs = %d, want 0", f.liveSubs())
	}
}

func TestOpenWithZeroRowsIsNotAnError(t *testing.T) {
	f := &fakeStore{} // sem registro
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, loading := tr.Score()
	if rec != nil || loading {
		t.Errorf("got rec=%v loading=%v, want nil/false", rec, loading)
	}
	if f.liveSubs() != 1 {
		t.Errorf("subs = %d, want 1", f.liveSubs())
	}
}

func TestOpenLoadsCurrentRecord(t *testing.T) {
	f := &fakeStore{rec: record(3, 42)}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, _ := tr.Score()
	if rec == nil || rec.TeamARuns != 42 || rec.Version != 3 {
		t.Errorf("got %+v, want runs=42 version=3", rec)
	}
}

func TestOnChangeReplacesMirrorWholesale(t *testing.T) {
	f := &fakeStore{rec: record(1, 10)}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	next := *record(2, 14)
	next.TeamAWickets = 5 // campo que o espelho antigo não tinha
	f.subs[0].notify(next)

	waitFor(t, func() bool {
		rec, _ := tr.Score()
		return rec != nil && rec.Version == 2
	})
	rec, _ := tr.Score()
	if rec.TeamARuns != 14 || rec.TeamAWickets != 5 {
		t.Errorf("mirror = %+v, want wholesale copy of the notification", rec)
	}
}

func TestStaleNotificationIsDiscarded(t *testing.T) {
	f := &fakeStore{rec: record(5, 50)}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	f.subs[0].notify(*record(4, 99)) // atrasada
	f.subs[0].notify(*record(5, 99)) // duplicada
	f.subs[0].notify(*record(6, 60)) // atual

	waitFor(t, func() bool {
		rec, _ := tr.Score()
		return rec.Version == 6
	})
	rec, _ := tr.Score()
	if rec.TeamARuns != 60 {
		t.Errorf("runs = %d, want 60 (stale notifications must not land)", rec.TeamARuns)
	}
}

func TestDoubleOpenKeepsSingleSubscription(t *testing.T) {
	f := &fakeStore{rec: record(1, 0)}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got := f.liveSubs(); got != 1 {
		t.Errorf("live subscriptions = %d, want 1", got)
	}
	if len(f.subs) != 2 || !f.subs[0].closed() {
		t.Error("previous subscription must be closed on re-open")
	}
}

func TestUpdateWithoutOpenMatchIsSilentNoop(t *testing.T) {
	f := &fakeStore{}
	tr := newTracker(f)

	runs := 1
	if err := tr.Update(context.Background(), events.ScorePatch{TeamARuns: &runs}); err != nil {
		t.Fatalf("precondition-not-met must not be an error, got %v", err)
	}
	if f.applyCount() != 0 {
		t.Error("no write may reach the store without an open match")
	}
}

func TestUpdateWithoutLoadedRecordIsSilentNoop(t *testing.T) {
	f := &fakeStore{} // partida aberta mas registro inexistente
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	runs := 1
	if err := tr.Update(context.Background(), events.ScorePatch{TeamARuns: &runs}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.applyCount() != 0 {
		t.Error("no write may reach the store without a loaded record")
	}
}

func TestUpdateSurfacesWriteFailure(t *testing.T) {
	f := &fakeStore{rec: record(1, 0), applyErr: errors.New("boom")}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	runs := 1
	if err := tr.Update(context.Background(), events.ScorePatch{TeamARuns: &runs}); err == nil {
		t.Fatal("expected write failure to surface")
	}
	// sem retry e sem rollback: o espelho local fica como estava
	rec, _ := tr.Score()
	if rec.TeamARuns != 0 {
		t.Errorf("mirror mutated on failed write: %+v", rec)
	}
}

func TestUpdateDoesNotMutateMirrorOnSuccess(t *testing.T) {
	// o espelho só muda por notificação (ou novo fetch), nunca pela
	// própria escrita
	f := &fakeStore{rec: record(1, 0)}
	tr := newTracker(f)
	defer tr.Close()

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	runs := 4
	if err := tr.Update(context.Background(), events.ScorePatch{TeamARuns: &runs}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, _ := tr.Score()
	if rec.TeamARuns != 0 {
		t.Errorf("runs = %d, want 0 until a notification arrives", rec.TeamARuns)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := &fakeStore{rec: record(1, 0)}
	tr := newTracker(f)

	if err := tr.Open(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	tr.Close()
	tr.Close()

	if f.subs[0].closeCalls != 1 {
		t.Errorf("subscription Close ran %d times, want exactly 1 per Open", f.subs[0].closeCalls)
	}
	rec, loading := tr.Score()
	if rec != nil || loading {
		t.Errorf("after Close: rec=%v loading=%v, want nil/false", rec, loading)
	}
}
