package game

import "github.com/lox/holdem-server/internal/card"

// PlayerView is one seat's publicly-visible state as seen by a given
// viewer: every field is safe to hand to any recipient except HoleCards,
// which callers must already have redacted for everyone but the viewer
// themselves (see RedactedView).
type PlayerView struct {
	PlayerID  string
	Name      string
	Chips     int
	Bet       int
	Folded    bool
	AllIn     bool
	Dealt     bool        // holds two hole cards in the current hand
	HoleCards []card.Card // nil unless this seat belongs to the viewer
}

// RedactedView is the hand state a single player (human or bot) is
// allowed to see: every opponent's hole cards are withheld, without
// exception. Bots receive exactly this, never the
// underlying GameState, so a bot strategy has no way to peek at
// opponents' cards even by accident.
type RedactedView struct {
	TableID            string
	Variant            Variant
	Phase              Phase
	HandNumber         int
	SmallBlind         int
	BigBlind           int
	Community          []card.Card
	Pot                int
	CurrentBet         int
	DealerIndex        int
	CurrentPlayerIndex int
	SeatOrder          []string
	Players            map[string]PlayerView
	Self               string
}

// RedactedView builds the view for viewerID: viewerID's own hole cards
// are included in clear, every other seat's are omitted entirely.
func (g *GameState) RedactedView(viewerID string) RedactedView {
	players := make(map[string]PlayerView, len(g.SeatOrder))
	for _, id := range g.SeatOrder {
		p := g.Players[id]
		view := PlayerView{
			PlayerID: p.ID,
			Name:     p.Name,
			Chips:    p.Chips,
			Bet:      p.CurrentBetThisStreet,
			Folded:   p.Status == StatusFolded,
			AllIn:    p.Status == StatusAllIn,
			Dealt:    len(p.HoleCards) == 2,
		}
		if id == viewerID {
			view.HoleCards = p.HoleCards
		}
		players[id] = view
	}
	return RedactedView{
		TableID:            g.TableID,
		Variant:            g.Variant,
		Phase:              g.Phase,
		HandNumber:         g.HandNumber,
		SmallBlind:         g.SmallBlind,
		BigBlind:           g.BigBlind,
		Community:          g.Community,
		Pot:                g.PotTotal,
		CurrentBet:         g.CurrentBet,
		DealerIndex:        g.DealerIndex,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		SeatOrder:          g.SeatOrder,
		Players:            players,
		Self:               viewerID,
	}
}
