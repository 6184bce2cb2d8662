package pot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSidePotSplitScenario(t *testing.T) {
	// A (100, all-in), B (300), C (300); A, B, C all reach showdown. C beats
	// B, A has the best hand overall. Main pot 300 contested by all three;
	// side pot 400 contested by B and C only.
	contributions := map[string]int{"A": 100, "B": 300, "C": 300}
	eligible := map[string]bool{"A": true, "B": true, "C": true}
	seatOrder := []string{"A", "B", "C"}

	scores := map[string]int{"A": 1, "B": 3, "C": 2} // lower is better
	awards := ComputePayouts(contributions, eligible, seatOrder, 0, func(pid string) int {
		return scores[pid]
	})

	got := toMap(awards)
	assert.Equal(t, 300, got["A"], "A wins the main pot it was eligible for")
	assert.Equal(t, 400, got["C"], "C beats B for the side pot it created")
	assert.Equal(t, 0, got["B"], "B never wins anything")
	assertConservation(t, contributions, awards)
}

func TestFoldedContributionsStayInPotButAreNotAwardedToFolder(t *testing.T) {
	contributions := map[string]int{"A": 50, "B": 50, "C": 50}
	eligible := map[string]bool{"A": true, "B": false, "C": true} // B folded
	seatOrder := []string{"A", "B", "C"}

	scores := map[string]int{"A": 1, "C": 2}
	awards := ComputePayouts(contributions, eligible, seatOrder, 0, func(pid string) int {
		return scores[pid]
	})

	got := toMap(awards)
	assert.Equal(t, 150, got["A"])
	assert.Equal(t, 0, got["B"], "a folded player is never awarded their own contribution back")
	assert.Equal(t, 0, got["C"])
	assertConservation(t, contributions, awards)
}

func TestFoldedShortContributionGoesToLowestLayerWinner(t *testing.T) {
	// D put in 10 and folded; A and B both contribute 100 and reach
	// showdown. The 10-level layer (10 from each of A, B, D) is contested
	// by A and B, so D's chips go to that layer's winner along with the
	// rest; no layer here is left without a live contestant (the
	// TestFoldedPlayerWithHighestContributionRollsIntoOverallWinner case
	// covers that).
	contributions := map[string]int{"A": 100, "B": 100, "D": 10}
	eligible := map[string]bool{"A": true, "B": true, "D": false}
	seatOrder := []string{"A", "B", "D"}

	scores := map[string]int{"A": 1, "B": 2}
	awards := ComputePayouts(contributions, eligible, seatOrder, 0, func(pid string) int {
		return scores[pid]
	})

	got := toMap(awards)
	assert.Equal(t, 210, got["A"])
	assertConservation(t, contributions, awards)
}

func TestTieSplitsEvenlyWithRemainderLeftOfDealer(t *testing.T) {
	contributions := map[string]int{"A": 101, "B": 101, "C": 101}
	eligible := map[string]bool{"A": true, "B": true, "C": true}
	seatOrder := []string{"A", "B", "C"} // dealer is A (index 0)

	// A and B tie for best; C is worse. Pot is 303, split 151 each with a
	// remainder of 1 chip, which goes to B: left of dealer (A) in seat
	// order.
	scores := map[string]int{"A": 1, "B": 1, "C": 2}
	awards := ComputePayouts(contributions, eligible, seatOrder, 0, func(pid string) int {
		return scores[pid]
	})

	got := toMap(awards)
	assert.Equal(t, 152, got["B"], "B sits left of the dealer among the tied winners")
	assert.Equal(t, 151, got["A"])
	assert.Equal(t, 0, got["C"])
	assertConservation(t, contributions, awards)
}

func TestFoldedPlayerWithHighestContributionRollsIntoOverallWinner(t *testing.T) {
	// D calls a big bet then folds, leaving no live contestant above the
	// level the surviving players reached — D's extra chips have nowhere
	// to roll forward to and must still be conserved.
	contributions := map[string]int{"A": 50, "D": 80}
	eligible := map[string]bool{"A": true, "D": false}
	seatOrder := []string{"A", "D"}

	awards := ComputePayouts(contributions, eligible, seatOrder, 0, func(pid string) int {
		return 1 // only one eligible contestant, so any score is "best"
	})

	got := toMap(awards)
	assert.Equal(t, 130, got["A"])
	assert.Equal(t, 0, got["D"])
	assertConservation(t, contributions, awards)
}

func TestConservationAcrossRandomishContributions(t *testing.T) {
	contributions := map[string]int{"A": 20, "B": 45, "C": 45, "D": 90}
	eligible := map[string]bool{"A": true, "B": true, "C": true, "D": true}
	seatOrder := []string{"A", "B", "C", "D"}

	scores := map[string]int{"A": 4, "B": 2, "C": 3, "D": 1}
	awards := ComputePayouts(contributions, eligible, seatOrder, 2, func(pid string) int {
		return scores[pid]
	})
	assertConservation(t, contributions, awards)
}

func toMap(awards []Award) map[string]int {
	m := make(map[string]int, len(awards))
	for _, a := range awards {
		m[a.PlayerID] = a.Amount
	}
	return m
}

func assertConservation(t *testing.T, contributions map[string]int, awards []Award) {
	t.Helper()
	total := 0
	for _, c := range contributions {
		total += c
	}
	got := 0
	for _, a := range awards {
		got += a.Amount
	}
	assert.Equal(t, total, got, "sum of awards must equal sum of contributions")
}
