package game

import "github.com/lox/holdem-server/internal/card"

// rotateDealer advances DealerIndex to the next seat that will be dealt
// into the coming hand, wrapping around the table. It is a no-op if no
// seat qualifies.
func (g *GameState) rotateDealer() {
	n := len(g.SeatOrder)
	if n == 0 {
		return
	}
	start := g.DealerIndex
	if start < 0 {
		start = n - 1 // so the first rotation lands on seat 0 when eligible
	}
	for i := 1; i <= n; i++ {
		idx := (start + i) % n
		p := g.Players[g.SeatOrder[idx]]
		if p.Chips > 0 && !p.Away {
			g.DealerIndex = idx
			return
		}
	}
}

// resetForNewHand clears every seated player's hand-scoped fields ahead
// of STARTING. Seats with chips that are not away are dealt back in as
// active; busted and away seats sit out.
func (g *GameState) resetForNewHand() {
	for _, id := range g.SeatOrder {
		p := g.Players[id]
		p.HoleCards = nil
		p.CurrentBetThisStreet = 0
		p.Contribution = 0
		p.HasActedThisStreet = false
		if p.Chips > 0 && !p.Away {
			p.Status = StatusActive
		} else {
			p.Status = StatusSittingOut
		}
	}
	g.Community = nil
	g.PotTotal = 0
	g.CurrentBet = 0
	g.RaiseCountThisStreet = 0
}

// blindSeats returns the small- and big-blind seat indices for the
// current DealerIndex, walking only seats dealt into the hand so a
// sitting-out seat between the dealer and the blinds doesn't absorb one.
// Heads-up the dealer posts the small blind.
func (g *GameState) blindSeats() (sbIdx, bbIdx int) {
	n := len(g.SeatOrder)
	dealt := 0
	for _, id := range g.SeatOrder {
		if g.Players[id].CanAct() {
			dealt++
		}
	}
	if dealt == 2 {
		sbIdx = g.nextSeatFrom(g.DealerIndex)
	} else {
		sbIdx = g.nextSeatFrom((g.DealerIndex + 1) % n)
	}
	bbIdx = g.nextSeatFrom((sbIdx + 1) % n)
	return sbIdx, bbIdx
}

// postBlinds commits the small and big blind from their respective
// seats, capping each at the player's stack (an under-funded blind goes
// all-in for less, same as any other under-sized commitment).
func (g *GameState) postBlinds() {
	sbIdx, bbIdx := g.blindSeats()
	g.bigBlindIndex = bbIdx
	g.postBlind(g.SeatOrder[sbIdx], g.SmallBlind)
	g.postBlind(g.SeatOrder[bbIdx], g.BigBlind)
	g.CurrentBet = g.BigBlind
	g.LastRaiseSize = g.BigBlind
	// The big blind is the street's opening bet: under the fixed-limit
	// cap, preflop allows the blind plus three raises on top.
	g.RaiseCountThisStreet = 1
}

func (g *GameState) postBlind(id string, amount int) {
	p := g.Players[id]
	if amount > p.Chips {
		amount = p.Chips
	}
	g.commit(p, amount)
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}
}

// dealHoleCards draws two cards to every active (dealt-in) player, in
// seat order starting just after the dealer, matching a real dealer's
// deal-around-the-table order.
func (g *GameState) dealHoleCards() {
	n := len(g.SeatOrder)
	if n == 0 {
		return
	}
	for round := 0; round < 2; round++ {
		for i := 1; i <= n; i++ {
			idx := (g.DealerIndex + i) % n
			p := g.Players[g.SeatOrder[idx]]
			if p.Status != StatusActive && p.Status != StatusAllIn {
				continue
			}
			c, ok := g.deck.Draw()
			if !ok {
				panic("game: deck exhausted dealing hole cards")
			}
			p.HoleCards = append(p.HoleCards, c)
		}
	}
}

// dealCommunity draws n cards onto the board.
func (g *GameState) dealCommunity(n int) []card.Card {
	drawn := g.deck.DrawN(n)
	if len(drawn) != n {
		panic("game: deck exhausted dealing community cards")
	}
	g.Community = append(g.Community, drawn...)
	return drawn
}

// eligiblePlayers returns the set of ids of every player still contesting
// the pot (not folded) — the eligible set pot.ComputePayouts needs.
func (g *GameState) eligiblePlayers() map[string]bool {
	out := make(map[string]bool, len(g.SeatOrder))
	for _, id := range g.SeatOrder {
		if g.Players[id].InHand() {
			out[id] = true
		}
	}
	return out
}

// contributions returns every seated player's total hand contribution,
// the input pot.ComputePayouts needs (folded players' chips included).
func (g *GameState) contributions() map[string]int {
	out := make(map[string]int, len(g.SeatOrder))
	for _, id := range g.SeatOrder {
		out[id] = g.Players[id].Contribution
	}
	return out
}
