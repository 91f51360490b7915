package ws

import (
	"testing"

	"github.com/gorilla/websocket"
)

func TestHubSubscriptionBookkeeping(t *testing.T) {
	h := NewHub(nil)
	c1 := &websocket.Conn{}
	c2 := &websocket.Conn{}

	h.subscribe("m1", c1)
	h.subscribe("m1", c2)
	h.subscribe("m2", c1)

	if got := h.subscribers("m1"); got != 2 {
		t.Errorf("m1 subscribers = %d, want 2", got)
	}

	// subscribe repetido não duplica a conexão
	h.subscribe("m1", c1)
	if got := h.subscribers("m1"); got != 2 {
		t.Errorf("m1 subscribers after resubscribe = %d, want 2", got)
	}

	h.unsubscribe("m1", c1)
	if got := h.subscribers("m1"); got != 1 {
		t.Errorf("m1 subscribers after unsubscribe = %d, want 1", got)
	}

	// drop limpa a conexão de todas as partidas
	h.drop(c1)
	if got := h.subscribers("m2"); got != 0 {
		t.Errorf("m2 subscribers after drop = %d, want 0", got)
	}

	h.drop(c2)
	if len(h.subs) != 0 {
		t.Errorf("subs map = %v, want empty after all drops", h.subs)
	}
}
