package dto

// AddBallResponse indica se a bola foi aplicada ao placar persistido.
// Applied=false sem erro significa pré-condição não atendida (partida não
// acompanhada ou registro inexistente): no-op silencioso, não erro.
type AddBallResponse struct {
	Applied bool   `json:"applied"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message,omitempty"`
}

// CurrentOverResponse é o estado transitório "this over" da tela.
type CurrentOverResponse struct {
	MatchID string   `json:"matchId"`
	Balls   []string `json:"balls"`
}
