package card

import rand "math/rand/v2"

// Deck is an ordered sequence of 52 distinct cards. It supports draw-from-top
// and is never reshuffled mid-hand; callers construct a fresh Deck per hand
// and discard it at hand end.
type Deck struct {
	cards []Card
	pos   int
}

// NewDeck builds a fresh, unshuffled 52-card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, New(rank, suit))
		}
	}
	return &Deck{cards: cards}
}

// NewOrdered builds a deck that deals the given cards in order. Intended
// for tests that need a known deal; a real table always uses NewDeck plus
// Shuffle.
func NewOrdered(cards ...Card) *Deck {
	return &Deck{cards: cards}
}

// Shuffle randomizes the order of all the deck's cards, including any
// already drawn, using the supplied random source via a Fisher-Yates
// shuffle, and resets drawing to the top. Callers should shuffle once, at
// hand start, before any Draw.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.pos = 0
}

// Draw removes and returns the top card. ok is false if the deck is
// exhausted.
func (d *Deck) Draw() (c Card, ok bool) {
	if d.pos >= len(d.cards) {
		return 0, false
	}
	c = d.cards[d.pos]
	d.pos++
	return c, true
}

// DrawN draws n cards from the top of the deck.
func (d *Deck) DrawN(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// Remaining reports how many cards are left to draw.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.pos
}
