package detector

import (
	"sort"
	"time"
)

// topKPerYear keeps the k highest-scoring candidates of one type within each
// calendar year. Ranking is by score descending, ties broken by earlier date.
// Minima and maxima never compete with each other here.
func topKPerYear(candidates []Candidate, k int) []Candidate {
	if k <= 0 {
		return nil
	}

	byYear := make(map[int][]Candidate)
	for _, c := range candidates {
		year := c.Date.Year()
		byYear[year] = append(byYear[year], c)
	}

	kept := make([]Candidate, 0, len(byYear)*k)
	for _, group := range byYear {
		sort.Slice(group, func(i, j int) bool {
			if cmp := group[i].Score.Cmp(group[j].Score); cmp != 0 {
				return cmp > 0
			}
			return group[i].Date.Before(group[j].Date)
		})
		if len(group) > k {
			group = group[:k]
		}
		kept = append(kept, group...)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })
	return kept
}

// enforceSeparation resolves any pair of selected events closer than
// minSeparationDays with a single left-to-right sweep over the date-sorted
// survivors. A conflict is always between the current candidate and the most
// recent survivor: the higher score wins, equal scores keep the earlier date,
// and the winner becomes the comparison point for the next candidate. A later
// event can therefore evict an already-kept one, but never resurrects an
// earlier loser.
func enforceSeparation(candidates []Candidate, minSeparationDays int) (kept []Candidate, removed int) {
	for _, current := range candidates {
		if len(kept) == 0 {
			kept = append(kept, current)
			continue
		}

		last := kept[len(kept)-1]
		gap := daysBetween(last.Date, current.Date)
		if gap >= minSeparationDays {
			kept = append(kept, current)
			continue
		}

		removed++
		if current.Score.GreaterThan(last.Score) {
			kept[len(kept)-1] = current
		}
	}
	return kept, removed
}

// daysBetween counts whole calendar days from a to b. Input dates are
// normalised to UTC midnight, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
