package game

import (
	rand "math/rand/v2"

	"github.com/lox/holdem-server/internal/card"
)

// GameState is one table's authoritative hand state. It is exclusively
// owned by the orchestrator goroutine driving that table; nothing in this
// package is safe for concurrent access from more than one goroutine at a
// time.
type GameState struct {
	TableID string
	Variant Variant

	SmallBlind int
	BigBlind   int

	Phase      Phase
	HandNumber int

	// SeatOrder lists every seated player's id in clockwise seat order. It
	// is stable across hands; DealerIndex and CurrentPlayerIndex are
	// indices into it.
	SeatOrder          []string
	DealerIndex        int
	CurrentPlayerIndex int

	// bigBlindIndex is the seat that posted this hand's big blind, fixed
	// at blind time so later turn-order math doesn't depend on whether
	// the blind seats have since gone all-in.
	bigBlindIndex int

	Players map[string]*Player

	Community []card.Card

	PotTotal             int
	CurrentBet           int
	LastRaiseSize        int
	RaiseCountThisStreet int

	deck *card.Deck
}

// NewGameState builds an empty table with the given variant and blinds.
// Seats are added with AddPlayer; they start sitting out and STARTING deals
// them in.
func NewGameState(tableID string, variant Variant, smallBlind, bigBlind int) *GameState {
	return &GameState{
		TableID:     tableID,
		Variant:     variant,
		SmallBlind:  smallBlind,
		BigBlind:    bigBlind,
		Phase:       PhaseWaiting,
		DealerIndex: -1,
		Players:     make(map[string]*Player),
	}
}

// AddPlayer seats a player at the next free seat. The seat starts sitting
// out; the next STARTING deals it in. Appending a sitting-out seat is safe
// even mid-hand, since every turn-order walk skips seats that cannot act
// and blind/deal positions are computed only at STARTING.
func (g *GameState) AddPlayer(id, name string, chips int, isBot bool) {
	g.Players[id] = &Player{
		ID:     id,
		Name:   name,
		IsBot:  isBot,
		Chips:  chips,
		Status: StatusSittingOut,
	}
	g.SeatOrder = append(g.SeatOrder, id)
}

// PlayersWithChips counts seats eligible to be dealt into the next hand:
// chips to play with and not away.
func (g *GameState) PlayersWithChips() int {
	n := 0
	for _, id := range g.SeatOrder {
		p := g.Players[id]
		if p.Chips > 0 && !p.Away {
			n++
		}
	}
	return n
}

// activeOrAllIn reports whether a seat's player is still contesting the
// pot, regardless of whether it is their turn to speak.
func (g *GameState) activeOrAllIn(id string) bool {
	p := g.Players[id]
	return p != nil && p.InHand()
}

// nextSeatFrom returns the seat index at or after start (wrapping) whose
// occupant can currently act, skipping folded/all-in/sitting-out seats.
// It returns -1 if no seat qualifies.
func (g *GameState) nextSeatFrom(start int) int {
	n := len(g.SeatOrder)
	if n == 0 {
		return -1
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if g.Players[g.SeatOrder[idx]].CanAct() {
			return idx
		}
	}
	return -1
}

// PreflopFirstToAct returns the seat index that acts first preflop: the
// first seat able to act after the big blind. Heads-up this wraps around
// to the dealer, who posted the small blind and acts first, per the
// standard heads-up convention.
func (g *GameState) PreflopFirstToAct() int {
	n := len(g.SeatOrder)
	if n == 0 {
		return -1
	}
	return g.nextSeatFrom((g.bigBlindIndex + 1) % n)
}

// PostflopFirstToAct returns the seat index that acts first on the flop,
// turn, and river: the first active seat after the dealer. This also
// holds heads-up, where the non-dealer seat is dealerIndex+1.
func (g *GameState) PostflopFirstToAct() int {
	n := len(g.SeatOrder)
	if n == 0 {
		return -1
	}
	return g.nextSeatFrom((g.DealerIndex + 1) % n)
}

// advanceTurn moves CurrentPlayerIndex to the next seat able to act,
// starting just after the current one.
func (g *GameState) advanceTurn() {
	n := len(g.SeatOrder)
	if n == 0 {
		g.CurrentPlayerIndex = -1
		return
	}
	g.CurrentPlayerIndex = g.nextSeatFrom((g.CurrentPlayerIndex + 1) % n)
}

// CurrentPlayerID returns the id of the seat awaiting action, or "" if
// none (betting round complete or no seats).
func (g *GameState) CurrentPlayerID() string {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.SeatOrder) {
		return ""
	}
	return g.SeatOrder[g.CurrentPlayerIndex]
}

// resetStreet clears the per-street betting fields, used when a street
// transitions (flop/turn/river). STARTING sets these fields through
// resetForNewHand and postBlinds instead.
func (g *GameState) resetStreet() {
	g.CurrentBet = 0
	g.LastRaiseSize = g.BigBlind
	g.RaiseCountThisStreet = 0
	for _, id := range g.SeatOrder {
		p := g.Players[id]
		p.CurrentBetThisStreet = 0
		p.HasActedThisStreet = false
	}
}

// shuffledDeck builds and shuffles a fresh 52-card deck using rng.
func shuffledDeck(rng *rand.Rand) *card.Deck {
	d := card.NewDeck()
	d.Shuffle(rng)
	return d
}
