// Package display guarda o estado transitório "this over" da tela de
// pontuação. É só exibição local: undo e end-over mexem apenas aqui e
// nunca tocam o log ball_by_ball persistido. A divergência entre display
// e registro é intencional.
package display

import "sync"

type CurrentOver struct {
	mu    sync.Mutex
	balls map[string][]string // matchID -> rótulos do over corrente
}

func New() *CurrentOver {
	return &CurrentOver{balls: make(map[string][]string)}
}

// Append registra o rótulo de uma bola aplicada ("4", "W", "WD", ...).
func (c *CurrentOver) Append(matchID, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balls[matchID] = append(c.balls[matchID], label)
}

// UndoLast remove o último rótulo do display. O ball_by_ball persistido
// não é alterado.
func (c *CurrentOver) UndoLast(matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.balls[matchID]); n > 0 {
		c.balls[matchID] = c.balls[matchID][:n-1]
	}
}

// EndOver limpa o display para o próximo over.
func (c *CurrentOver) EndOver(matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balls, matchID)
}

// Balls devolve uma cópia dos rótulos correntes.
func (c *CurrentOver) Balls(matchID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.balls[matchID]))
	copy(out, c.balls[matchID])
	return out
}
