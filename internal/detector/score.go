package detector

import "github.com/shopspring/decimal"

// scoreCandidates attaches a reversal magnitude to each located extremum.
// For a minimum at index i the score is the largest rise of the smoothed
// value over the lookahead range (i, i+lookahead]; for a maximum the largest
// drop, stored as a positive magnitude. Scores never go below zero, and a
// candidate without any future observation keeps score zero rather than
// being discarded.
func scoreCandidates(series []Point, values []decimal.Decimal, indices []int, typ EventType, lookahead int) []Candidate {
	candidates := make([]Candidate, 0, len(indices))
	for _, i := range indices {
		score := decimal.Zero
		for j := i + 1; j <= i+lookahead && j < len(values); j++ {
			change := values[j].Sub(values[i])
			if typ == Maximum {
				change = change.Neg()
			}
			if change.GreaterThan(score) {
				score = change
			}
		}
		candidates = append(candidates, Candidate{
			Index: i,
			Date:  series[i].Date,
			Type:  typ,
			Score: score,
		})
	}
	return candidates
}
