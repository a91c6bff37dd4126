package service

import "timeguesser/internal/domain"

// RoundScore awards 1000 points for an exact year and 10 fewer per year off.
func RoundScore(yearTrue, yearGuess int) int {
	delta := yearTrue - yearGuess
	if delta < 0 {
		delta = -delta
	}
	score := domain.MaxRoundScore - 10*delta
	if score < 0 {
		return 0
	}
	return score
}
