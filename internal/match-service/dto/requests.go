package dto

type CreateMatchRequest struct {
	Tournament string `json:"tournament"`
	TeamA      string `json:"team_a"`
	TeamB      string `json:"team_b"`
	OversLimit int    `json:"overs_limit,omitempty"` // 0 = sem limite definido
}
