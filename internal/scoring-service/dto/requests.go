package dto

// AddBallRequest é a bola enviada pelo mesário.
type AddBallRequest struct {
	Runs     int  `json:"runs"`
	IsWicket bool `json:"isWicket"`
	IsWide   bool `json:"isWide"`
	IsNoBall bool `json:"isNoBall"`
	IsBye    bool `json:"isBye"`
	IsLegBye bool `json:"isLegBye"`
}
