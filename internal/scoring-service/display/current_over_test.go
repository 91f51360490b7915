package display

import (
	"reflect"
	"testing"
)

func TestAppendAndBalls(t *testing.T) {
	d := New()
	d.Append("m1", "1")
	d.Append("m1", "4")
	d.Append("m2", "W")

	if got := d.Balls("m1"); !reflect.DeepEqual(got, []string{"1", "4"}) {
		t.Errorf("m1 = %v, want [1 4]", got)
	}
	if got := d.Balls("m2"); !reflect.DeepEqual(got, []string{"W"}) {
		t.Errorf("m2 = %v, want [W]", got)
	}
}

func TestUndoLastOnlyTouchesDisplay(t *testing.T) {
	// cenário documentado: três bolas registradas, undo → display mostra
	// duas; o ball_by_ball persistido continua com três entradas (este
	// pacote nem tem acesso ao store).
	d := New()
	d.Append("m1", "1")
	d.Append("m1", "2")
	d.Append("m1", "W")

	d.UndoLast("m1")

	if got := d.Balls("m1"); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("display = %v, want [1 2]", got)
	}
}

func TestUndoLastOnEmptyIsNoop(t *testing.T) {
	d := New()
	d.UndoLast("m1")
	if got := d.Balls("m1"); len(got) != 0 {
		t.Errorf("display = %v, want empty", got)
	}
}

func TestEndOverClears(t *testing.T) {
	d := New()
	d.Append("m1", "6")
	d.EndOver("m1")
	if got := d.Balls("m1"); len(got) != 0 {
		t.Errorf("display = %v, want empty after end over", got)
	}
}

func TestBallsReturnsCopy(t *testing.T) {
	d := New()
	d.Append("m1", "1")
	got := d.Balls("m1")
	got[0] = "corrupted"
	if fresh := d.Balls("m1"); fresh[0] != "1" {
		t.Error("Balls must return a copy, not the internal slice")
	}
}
