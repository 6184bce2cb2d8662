package evaluator

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// primes holds the unique prime assigned to each rank (index 0 = deuce,
// index 12 = ace), mirroring internal/card's encoding so the two packages
// agree on rank identity without importing one another's internals.
var primes = [13]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}

var (
	tablesOnce sync.Once

	// flushTable is keyed by the XOR (equivalently OR, since all bits are
	// distinct) of the five cards' one-hot rank bits, a 13-bit mask. It
	// covers straight flushes and regular flushes.
	flushTable map[uint32]HandRank

	// unique5Table is keyed by the product of the five distinct ranks'
	// primes. It covers straights and no-pair (high card) hands.
	unique5Table map[uint64]HandRank

	// pairsTable is keyed by the product of primes with multiplicity. It
	// covers four of a kind, full house, three of a kind, two pair, and
	// one pair.
	pairsTable map[uint64]HandRank
)

// Init builds the lookup tables eagerly. The server calls it at startup
// so the one-time construction cost never lands inside a hand.
func Init() {
	buildTables()
}

// buildTables constructs the three lookup tables from first principles.
// The server triggers it through Init at startup; Eval5 also calls it as a
// guard, which after the first build is only the sync.Once check.
func buildTables() {
	tablesOnce.Do(func() {
		var g errgroup.Group
		g.Go(func() error {
			flushTable, unique5Table = buildDistinctRankTables()
			return nil
		})
		g.Go(func() error {
			pairsTable = buildPairedRankTables()
			return nil
		})
		_ = g.Wait()
	})
}

// rankCombo is a 5-element descending list of rank indices (0=deuce..12=ace)
// used only during table construction.
type rankCombo [5]int

// buildDistinctRankTables enumerates all C(13,5)=1287 combinations of
// distinct ranks, classifies each as a straight or not (including the wheel
// A-2-3-4-5), and assigns scores per the standard Cactus Kev bands.
func buildDistinctRankTables() (map[uint32]HandRank, map[uint64]HandRank) {
	flush := make(map[uint32]HandRank, 1287)
	unique5 := make(map[uint64]HandRank, 1287)

	var straights []rankCombo
	var nonStraights []rankCombo

	forEachCombo(13, 5, func(idxDesc []int) {
		var combo rankCombo
		copy(combo[:], idxDesc)
		if _, ok := straightHigh(combo); ok {
			straights = append(straights, combo)
		} else {
			nonStraights = append(nonStraights, combo)
		}
	})

	// Unlike nonStraights, the 10 straights do NOT come out of forEachCombo
	// in high-card order: the wheel (A-5-4-3-2) is visited early because it
	// starts with the ace index, long before the 6-high straight. Re-sort
	// explicitly by conventional straight high card, descending.
	sort.Slice(straights, func(i, j int) bool {
		hi, _ := straightHigh(straights[i])
		hj, _ := straightHigh(straights[j])
		return hi > hj
	})
	for i, combo := range straights {
		mask := rankMask(combo)
		product := primeProduct(combo)
		flush[mask] = HandRank(1 + i)
		unique5[product] = HandRank(1600 + i)
	}

	// nonStraights are likewise already in descending lexicographic order,
	// which is the correct "best hand first" ordering for no-pair hands:
	// compare the highest differing rank.
	for i, combo := range nonStraights {
		mask := rankMask(combo)
		product := primeProduct(combo)
		flush[mask] = HandRank(323 + i)
		unique5[product] = HandRank(6186 + i)
	}

	return flush, unique5
}

// buildPairedRankTables enumerates every multiset of 5 ranks containing a
// repeated rank (quads, full house, trips, two pair, one pair) and assigns
// scores per the standard Cactus Kev bands.
func buildPairedRankTables() map[uint64]HandRank {
	table := make(map[uint64]HandRank, 4888)

	// Four of a kind: quad rank descending, then kicker descending.
	idx := 0
	forEachDesc(13, func(quad int) {
		forEachDescExcept(13, []int{quad}, func(kicker int) {
			product := primes[quad] * primes[quad] * primes[quad] * primes[quad] * primes[kicker]
			table[product] = HandRank(11 + idx)
			idx++
		})
	})

	// Full house: trips rank descending, then pair rank descending from
	// the remaining ranks.
	idx = 0
	forEachDesc(13, func(trips int) {
		forEachDescExcept(13, []int{trips}, func(pair int) {
			product := primes[trips] * primes[trips] * primes[trips] * primes[pair] * primes[pair]
			table[product] = HandRank(167 + idx)
			idx++
		})
	})

	// Three of a kind: trips rank descending, then two kickers chosen
	// (descending combination) from the remaining 12 ranks.
	idx = 0
	forEachDesc(13, func(trips int) {
		forEachComboExcept(13, []int{trips}, 2, func(kickers []int) {
			product := primes[trips] * primes[trips] * primes[trips] * primes[kickers[0]] * primes[kickers[1]]
			table[product] = HandRank(1610 + idx)
			idx++
		})
	})

	// Two pair: higher pair rank descending, lower pair rank descending
	// from what remains, then kicker descending from what remains.
	idx = 0
	forEachDesc(13, func(hiPair int) {
		forEachDescExcept(13, []int{hiPair}, func(loPair int) {
			if loPair >= hiPair {
				return
			}
			forEachDescExcept(13, []int{hiPair, loPair}, func(kicker int) {
				product := primes[hiPair] * primes[hiPair] * primes[loPair] * primes[loPair] * primes[kicker]
				table[product] = HandRank(2468 + idx)
				idx++
			})
		})
	})

	// One pair: pair rank descending, then three kickers chosen
	// (descending combination) from the remaining 12 ranks.
	idx = 0
	forEachDesc(13, func(pair int) {
		forEachComboExcept(13, []int{pair}, 3, func(kickers []int) {
			product := primes[pair] * primes[pair] * primes[kickers[0]] * primes[kickers[1]] * primes[kickers[2]]
			table[product] = HandRank(3326 + idx)
			idx++
		})
	})

	return table
}

// straightHigh reports whether the five (distinct, descending) rank indices
// form a straight, including the wheel (A-2-3-4-5 low), and if so the
// straight's conventional high-card rank index for ordering purposes.
func straightHigh(c rankCombo) (int, bool) {
	if c == (rankCombo{12, 3, 2, 1, 0}) { // A,5,4,3,2 — wheel, ace plays low
		return 3, true // high card is the 5 (index 3)
	}
	for i := 0; i < 4; i++ {
		if c[i]-c[i+1] != 1 {
			return 0, false
		}
	}
	return c[0], true
}

func rankMask(c rankCombo) uint32 {
	var mask uint32
	for _, r := range c {
		mask |= 1 << uint(r)
	}
	return mask
}

func primeProduct(c rankCombo) uint64 {
	product := uint64(1)
	for _, r := range c {
		product *= primes[r]
	}
	return product
}

// forEachCombo invokes fn once per k-combination of {0,...,n-1}, each
// combination sorted descending, enumerated in descending lexicographic
// order (the combination built from the largest available indices first
// sorts earliest).
func forEachCombo(n, k int, fn func([]int)) {
	combo := make([]int, 0, k)
	var rec func(next int)
	rec = func(next int) {
		if len(combo) == k {
			fn(combo)
			return
		}
		remaining := k - len(combo)
		for v := next; v >= remaining-1; v-- {
			combo = append(combo, v)
			rec(v - 1)
			combo = combo[:len(combo)-1]
		}
	}
	rec(n - 1)
}

// forEachDesc invokes fn once per index in {0,...,n-1}, from n-1 down to 0.
func forEachDesc(n int, fn func(int)) {
	for v := n - 1; v >= 0; v-- {
		fn(v)
	}
}

// forEachDescExcept invokes fn once per index in {0,...,n-1} not present in
// except, from n-1 down to 0.
func forEachDescExcept(n int, except []int, fn func(int)) {
	for v := n - 1; v >= 0; v-- {
		if containsInt(except, v) {
			continue
		}
		fn(v)
	}
}

// forEachComboExcept invokes fn once per k-combination of {0,...,n-1}\except,
// each combination sorted descending, in descending lexicographic order.
func forEachComboExcept(n int, except []int, k int, fn func([]int)) {
	pool := make([]int, 0, n)
	for v := n - 1; v >= 0; v-- {
		if !containsInt(except, v) {
			pool = append(pool, v)
		}
	}
	combo := make([]int, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(combo) == k {
			fn(combo)
			return
		}
		remaining := k - len(combo)
		for i := start; i <= len(pool)-remaining; i++ {
			combo = append(combo, pool[i])
			rec(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	rec(0)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
