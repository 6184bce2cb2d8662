// Package pot derives side-pot payouts from a hand's contributions. Pots
// are never stored: ComputePayouts is a pure function called once per hand,
// at showdown or at an all-fold short-circuit.
package pot

import "sort"

// Award is a single payout: a player id and the chip amount they win.
type Award struct {
	PlayerID string
	Amount   int
}

// ComputePayouts derives side-pot awards from a hand's contributions.
//
// contributions maps player id to total chips put into the pot this hand,
// including folded players: their chips stay in the pot but are never
// awarded back to them. eligible marks which players may win a pot (did
// not fold); a player absent from eligible, or mapped to false, can still
// create a contribution cap but never receives an award. seatOrder lists
// every contributing player's id in seat order; dealerIndex is seatOrder's
// index of the dealer, used only to resolve tie-split remainders. scoreFn
// returns a player's showdown hand score — lower is better, matching
// internal/evaluator's HandRank convention — and is never invoked for a
// player not present in contestants at some level.
func ComputePayouts(
	contributions map[string]int,
	eligible map[string]bool,
	seatOrder []string,
	dealerIndex int,
	scoreFn func(playerID string) int,
) []Award {
	awards := make(map[string]int, len(seatOrder))

	previousCap := 0
	carry := 0
	for _, capL := range distinctCaps(contributions) {
		potL := carry
		for _, pid := range seatOrder {
			c := contributions[pid]
			potL += min(c, capL) - min(c, previousCap)
		}

		contestants := contestantsAtCap(seatOrder, contributions, eligible, capL)
		if len(contestants) == 0 {
			// Every contributor at this level folded; the chips roll
			// forward to whichever level next has a live contestant.
			carry = potL
			previousCap = capL
			continue
		}
		carry = 0

		distribute(awards, potL, contestants, seatOrder, dealerIndex, scoreFn)
		previousCap = capL
	}

	if carry > 0 {
		// The highest cap belonged to a folded player with nobody left to
		// contest it — there is no further level to roll forward to. This
		// dead money still has to go somewhere to preserve Σawards =
		// Σcontributions, so it joins whoever wins among all eligible
		// players overall, the same as an uncalled bet returning to the
		// hand's eventual winner.
		if all := contestantsAtCap(seatOrder, contributions, eligible, 0); len(all) > 0 {
			distribute(awards, carry, all, seatOrder, dealerIndex, scoreFn)
		}
	}

	result := make([]Award, 0, len(awards))
	for _, pid := range seatOrder {
		if amt, ok := awards[pid]; ok && amt > 0 {
			result = append(result, Award{PlayerID: pid, Amount: amt})
		}
	}
	return result
}

// distinctCaps returns the sorted, distinct, positive contribution totals
// across all contributors (folded or not) — the ascending boundary levels
// at which a new side pot layer begins.
func distinctCaps(contributions map[string]int) []int {
	seen := make(map[int]bool, len(contributions))
	caps := make([]int, 0, len(contributions))
	for _, c := range contributions {
		if c <= 0 || seen[c] {
			continue
		}
		seen[c] = true
		caps = append(caps, c)
	}
	sort.Ints(caps)
	return caps
}

// contestantsAtCap returns the eligible players, in seat order, whose
// contribution reaches at least capL: the players this pot layer is
// contested among.
func contestantsAtCap(seatOrder []string, contributions map[string]int, eligible map[string]bool, capL int) []string {
	var out []string
	for _, pid := range seatOrder {
		if eligible[pid] && contributions[pid] >= capL {
			out = append(out, pid)
		}
	}
	return out
}

// distribute awards potL to the best-scoring contestant(s), splitting ties
// evenly with any integer remainder going to the first tied player in seat
// order starting left of the dealer.
func distribute(awards map[string]int, potL int, contestants []string, seatOrder []string, dealerIndex int, scoreFn func(string) int) {
	best := scoreFn(contestants[0])
	winners := []string{contestants[0]}
	for _, pid := range contestants[1:] {
		s := scoreFn(pid)
		switch {
		case s < best:
			best = s
			winners = []string{pid}
		case s == best:
			winners = append(winners, pid)
		}
	}

	share := potL / len(winners)
	remainder := potL % len(winners)
	for _, pid := range winners {
		awards[pid] += share
	}
	if remainder == 0 {
		return
	}
	first := firstLeftOfDealer(winners, seatOrder, dealerIndex)
	awards[first] += remainder
}

// firstLeftOfDealer returns whichever of candidates sits earliest in seat
// order starting immediately left of the dealer and wrapping around.
func firstLeftOfDealer(candidates []string, seatOrder []string, dealerIndex int) string {
	inSet := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		inSet[c] = true
	}
	n := len(seatOrder)
	for i := 1; i <= n; i++ {
		pid := seatOrder[(dealerIndex+i)%n]
		if inSet[pid] {
			return pid
		}
	}
	return candidates[0]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
