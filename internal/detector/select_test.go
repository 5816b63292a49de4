package detector

import (
	"testing"

	"github.com/shopspring/decimal"
)

func candidate(dayIdx int, typ EventType, score int64) Candidate {
	return Candidate{
		Index: dayIdx,
		Date:  day(dayIdx),
		Type:  typ,
		Score: decimal.NewFromInt(score),
	}
}

func TestTopKPerYearKeepsHighestScores(t *testing.T) {
	candidates := []Candidate{
		candidate(10, Minimum, 3),
		candidate(40, Minimum, 9),
		candidate(80, Minimum, 6),
		// Next calendar year.
		candidate(400, Minimum, 1),
	}

	kept := topKPerYear(candidates, 1)
	if len(kept) != 2 {
		t.Fatalf("expected one survivor per year, got %d", len(kept))
	}
	if !kept[0].Date.Equal(day(40)) {
		t.Fatalf("expected day 40 to win 2024, got %s", kept[0].Date)
	}
	if !kept[1].Date.Equal(day(400)) {
		t.Fatalf("expected day 400 to win 2025, got %s", kept[1].Date)
	}
}

func TestTopKPerYearTieBreaksToEarlierDate(t *testing.T) {
	candidates := []Candidate{
		candidate(50, Maximum, 7),
		candidate(20, Maximum, 7),
		candidate(90, Maximum, 7),
	}

	kept := topKPerYear(candidates, 2)
	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(kept))
	}
	if !kept[0].Date.Equal(day(20)) || !kept[1].Date.Equal(day(50)) {
		t.Fatalf("ties must keep earlier dates first, got %s and %s", kept[0].Date, kept[1].Date)
	}
}

func TestTopKZeroSelectsNothing(t *testing.T) {
	candidates := []Candidate{candidate(10, Minimum, 5)}
	if kept := topKPerYear(candidates, 0); len(kept) != 0 {
		t.Fatalf("k=0 must select nothing, got %v", kept)
	}
}

func TestSeparationLaterHigherScoreEvictsEarlier(t *testing.T) {
	// Minima at day 10 (score 5) and day 25 (score 8): day 25 wins.
	candidates := []Candidate{
		candidate(10, Minimum, 5),
		candidate(25, Minimum, 8),
	}

	kept, removed := enforceSeparation(candidates, 30)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if len(kept) != 1 || !kept[0].Date.Equal(day(25)) {
		t.Fatalf("expected day 25 to survive, got %v", kept)
	}
}

func TestSeparationEarlierHigherScoreSurvives(t *testing.T) {
	// Maxima at day 10 (score 8) and day 25 (score 5): day 10 stays last.
	candidates := []Candidate{
		candidate(10, Maximum, 8),
		candidate(25, Maximum, 5),
	}

	kept, removed := enforceSeparation(candidates, 30)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if len(kept) != 1 || !kept[0].Date.Equal(day(10)) {
		t.Fatalf("expected day 10 to survive, got %v", kept)
	}
}

func TestSeparationEqualScoresKeepEarlier(t *testing.T) {
	candidates := []Candidate{
		candidate(10, Minimum, 5),
		candidate(25, Maximum, 5),
	}

	kept, _ := enforceSeparation(candidates, 30)
	if len(kept) != 1 || !kept[0].Date.Equal(day(10)) {
		t.Fatalf("equal scores must keep the earlier event, got %v", kept)
	}
}

func TestSeparationWinnerBecomesComparisonPoint(t *testing.T) {
	// Day 25 evicts day 10, then day 40 conflicts with day 25 (gap 15),
	// not with the discarded day 10.
	candidates := []Candidate{
		candidate(10, Minimum, 5),
		candidate(25, Minimum, 8),
		candidate(40, Maximum, 2),
	}

	kept, removed := enforceSeparation(candidates, 30)
	if removed != 2 {
		t.Fatalf("expected 2 removals, got %d", removed)
	}
	if len(kept) != 1 || !kept[0].Date.Equal(day(25)) {
		t.Fatalf("expected only day 25 to survive, got %v", kept)
	}
}

func TestSeparationRespectsSufficientGap(t *testing.T) {
	candidates := []Candidate{
		candidate(10, Minimum, 5),
		candidate(40, Maximum, 1),
		candidate(90, Minimum, 3),
	}

	kept, removed := enforceSeparation(candidates, 30)
	if removed != 0 {
		t.Fatalf("expected no removals, got %d", removed)
	}
	if len(kept) != 3 {
		t.Fatalf("expected all 3 events kept, got %d", len(kept))
	}
	for i := 1; i < len(kept); i++ {
		if gap := daysBetween(kept[i-1].Date, kept[i].Date); gap < 30 {
			t.Fatalf("kept events %d and %d only %d days apart", i-1, i, gap)
		}
	}
}
