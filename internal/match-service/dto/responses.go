package dto

import "time"

type MatchResponse struct {
	ID         string    `json:"id"`
	Tournament string    `json:"tournament"`
	TeamA      string    `json:"team_a"`
	TeamB      string    `json:"team_b"`
	OversLimit int       `json:"overs_limit,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
