// Package evaluator scores poker hands using the Cactus Kev scheme: every
// 5-card hand maps to an integer in [1, 7462], lower is better, via three
// precomputed lookup tables instead of branching category logic.
package evaluator

import "github.com/lox/holdem-server/internal/card"

// Eval5 scores a single 5-card hand. Order of the arguments does not matter.
func Eval5(c1, c2, c3, c4, c5 card.Card) HandRank {
	buildTables()

	cards := [5]card.Card{c1, c2, c3, c4, c5}

	suitFlag := cards[0].SuitFlag() & cards[1].SuitFlag() & cards[2].SuitFlag() & cards[3].SuitFlag() & cards[4].SuitFlag()
	if suitFlag != 0 {
		mask := cards[0].RankBit() ^ cards[1].RankBit() ^ cards[2].RankBit() ^ cards[3].RankBit() ^ cards[4].RankBit()
		if hr, ok := flushTable[uint32(mask>>16)]; ok {
			return hr
		}
	}

	product := uint64(cards[0].Prime()) * uint64(cards[1].Prime()) * uint64(cards[2].Prime()) * uint64(cards[3].Prime()) * uint64(cards[4].Prime())

	rankMask := cards[0].RankBit() | cards[1].RankBit() | cards[2].RankBit() | cards[3].RankBit() | cards[4].RankBit()
	if bitsSet(rankMask) == 5 {
		// Five distinct ranks, no flush: straight or high card.
		return unique5Table[product]
	}

	return pairsTable[product]
}

// bitsSet counts the set bits in a rank-bit mask (popcount over at most 13
// bits, so a simple loop is clearer than invoking math/bits here).
func bitsSet(mask uint32) int {
	n := 0
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}

// sevenCombos lists the 21 ways to choose 5 of 7 card indices, precomputed
// once since there are only C(7,5)=21 of them regardless of the hand.
var sevenCombos = func() [21][5]int {
	var combos [21][5]int
	n := 0
	for a := 0; a < 7; a++ {
		for b := a + 1; b < 7; b++ {
			for c := b + 1; c < 7; c++ {
				for d := c + 1; d < 7; d++ {
					for e := d + 1; e < 7; e++ {
						combos[n] = [5]int{a, b, c, d, e}
						n++
					}
				}
			}
		}
	}
	return combos
}()

// Eval7 scores the best 5-card hand out of 7 cards (2 hole + 5 community),
// returning the winning score and the indices (into cards) of the 5 cards
// that produced it, for showdown display.
func Eval7(cards []card.Card) (HandRank, [5]int) {
	if len(cards) != 7 {
		panic("evaluator: Eval7 requires exactly 7 cards")
	}

	best := HandRank(7463)
	var bestIdx [5]int
	for _, combo := range sevenCombos {
		hr := Eval5(
			cards[combo[0]], cards[combo[1]], cards[combo[2]], cards[combo[3]], cards[combo[4]],
		)
		if hr < best {
			best = hr
			bestIdx = combo
		}
	}
	return best, bestIdx
}
