package cricket

import "math"

// BallsInOver extrai o número de bolas válidas do over corrente a partir da
// codificação decimal de overs (3.4 → 4). Com entradas bem formadas o
// resultado fica entre 0 e 5; entradas malformadas (.6–.9) não são
// rejeitadas e propagam o valor que carregam.
func BallsInOver(overs float64) int {
	return int(math.Round(math.Mod(overs, 1) * 10))
}

// CompletedOvers retorna a parte inteira da codificação de overs.
func CompletedOvers(overs float64) int {
	return int(math.Floor(overs))
}

// NextOvers calcula o valor de overs após uma bola válida. Na sexta bola o
// over fecha e a fração zera; caso contrário o dígito fracionário avança 1.
func NextOvers(overs float64) float64 {
	balls := BallsInOver(overs)
	if balls >= 5 {
		return float64(CompletedOvers(overs) + 1)
	}
	return float64(CompletedOvers(overs)) + float64(balls+1)/10
}
